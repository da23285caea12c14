package compiler

import "egg/internal/types"

// ReturnInfo records the declared type of a return/yield path plus how many
// times it was exercised, so the compiler can tell "never returned" from
// "returned once" (spec §3.4: "optional canReturn/canYield records (type
// plus count of occurrences)").
type ReturnInfo struct {
	Type  *types.Type
	Count int
}

// ExprContext is one frame of the nested symbol-chain (spec §3.4): a local
// symbol table, a parent pointer, an optional capture set, and an optional
// array-element-type hint used while compiling array literals under a
// yield-spread or declared-array-type context.
type ExprContext struct {
	parent   *ExprContext
	symbols  map[string]*Symbol
	captures map[string]bool // non-nil only on frames that gather closure captures
	hint     *types.Type
}

// newExprContext opens a child scope under parent (possibly nil for the
// module root).
func newExprContext(parent *ExprContext) *ExprContext {
	return &ExprContext{parent: parent, symbols: make(map[string]*Symbol)}
}

// newCaptureFrame opens a child scope that also starts a fresh capture set,
// used at function/object-method boundaries (spec §3.4, §4.6.2 "fresh
// capture set").
func newCaptureFrame(parent *ExprContext) *ExprContext {
	c := newExprContext(parent)
	c.captures = make(map[string]bool)
	return c
}

// Declare adds sym to this scope's table. It reports false only if a symbol
// with the same name already exists in THIS scope. Enclosing scopes are not
// checked, here or by any caller, so a declaration whose name is already
// declared in an enclosing scope succeeds and shadows it.
func (c *ExprContext) Declare(sym *Symbol) bool {
	if _, exists := c.symbols[sym.Name]; exists {
		return false
	}
	c.symbols[sym.Name] = sym
	return true
}

// Lookup walks the parent chain. Whenever the walk passes through a frame
// with a capture set before finding the symbol, the name is added to that
// frame's capture set — "crossing a capture boundary during lookup records
// the name in every intervening frame" (spec §9).
func (c *ExprContext) Lookup(name string) (*Symbol, bool) {
	var crossed []*ExprContext
	for cur := c; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			for _, fr := range crossed {
				fr.captures[name] = true
			}
			return sym, true
		}
		if cur.captures != nil {
			crossed = append(crossed, cur)
		}
	}
	return nil, false
}

// Captures returns the names this frame's closures must capture, or nil if
// this frame does not gather captures.
func (c *ExprContext) Captures() []string {
	if c.captures == nil {
		return nil
	}
	names := make([]string, 0, len(c.captures))
	for n := range c.captures {
		names = append(names, n)
	}
	return names
}

// SetArrayHint/ArrayHint implement the array-element-type hint slot (spec
// §4.6.4 "array literal... if the enclosing context supplies an
// array-element-type hint"); SetArrayHint(nil) clears it.
func (c *ExprContext) SetArrayHint(t *types.Type) { c.hint = t }
func (c *ExprContext) ArrayHint() *types.Type     { return c.hint }

// StmtContext extends ExprContext with loop/function control-flow flags
// (spec §3.4).
type StmtContext struct {
	*ExprContext
	canBreak    bool
	canContinue bool
	canRethrow  bool
	canReturn   *ReturnInfo
	canYield    *ReturnInfo
}

// newStmtContext opens a statement context sharing an already-open
// ExprContext, inheriting control-flow flags from parent unless overridden
// by the caller.
func newStmtContext(expr *ExprContext, parent *StmtContext) *StmtContext {
	s := &StmtContext{ExprContext: expr}
	if parent != nil {
		s.canBreak = parent.canBreak
		s.canContinue = parent.canContinue
		s.canRethrow = parent.canRethrow
		s.canReturn = parent.canReturn
		s.canYield = parent.canYield
	}
	return s
}
