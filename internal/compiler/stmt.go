package compiler

import (
	"egg/internal/ir"
	"egg/internal/syntax"
	"egg/internal/types"
)

// compileStmt dispatches a statement node (spec §4.6.2). A nil result means
// a diagnostic was logged and the statement contributes nothing to the
// block; the compiler continues with siblings regardless (spec §4.6.7:
// "tolerant... continues compiling siblings").
func (c *Compiler) compileStmt(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	switch n.Kind {
	case syntax.StmtBlock:
		return c.compileBlock(resource, n.Children, ctx)
	case syntax.StmtDeclareVariable:
		return c.compileDeclareVariable(n, ctx)
	case syntax.StmtDefineVariable:
		return c.compileDefineVariable(n, ctx)
	case syntax.StmtDefineFunction:
		return c.compileDefineFunction(resource, n, ctx)
	case syntax.StmtDefineType:
		return c.compileDefineType(n, ctx)
	case syntax.StmtMutate:
		return c.compileMutate(n, ctx)
	case syntax.StmtForEach:
		return c.compileForEach(resource, n, ctx)
	case syntax.StmtForLoop:
		return c.compileForLoop(resource, n, ctx)
	case syntax.StmtIf:
		return c.compileIf(resource, n, ctx)
	case syntax.StmtWhile:
		return c.compileWhile(resource, n, ctx)
	case syntax.StmtDo:
		return c.compileDo(resource, n, ctx)
	case syntax.StmtTry:
		return c.compileTry(resource, n, ctx)
	case syntax.StmtSwitch:
		return c.compileSwitch(resource, n, ctx)
	case syntax.StmtReturn:
		return c.compileReturn(n, ctx)
	case syntax.StmtYield:
		return c.compileYield(n, ctx)
	case syntax.StmtThrow:
		return c.compileThrow(n, ctx)
	case syntax.StmtBreak:
		if !ctx.canBreak {
			c.errorf(toIRRange(n.Range), "break is only valid inside a loop or switch case")
			return nil
		}
		return ir.NewNode(ir.StmtBreak, toIRRange(n.Range))
	case syntax.StmtContinue:
		if !ctx.canContinue {
			c.errorf(toIRRange(n.Range), "continue is only valid inside a loop or switch case")
			return nil
		}
		return ir.NewNode(ir.StmtContinue, toIRRange(n.Range))
	case syntax.StmtExpression:
		if len(n.Children) != 1 {
			c.errorf(toIRRange(n.Range), "malformed expression statement")
			return nil
		}
		v := c.compileValueExpr(n.Children[0], ctx.ExprContext)
		if v == nil {
			return nil
		}
		return ir.NewNode(ir.StmtExpression, toIRRange(n.Range), v)
	default:
		c.errorf(toIRRange(n.Range), "not a statement")
		return nil
	}
}

// compileDeclareVariable implements `T x;` (spec §4.6.2 "Declare").
func (c *Compiler) compileDeclareVariable(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed variable declaration")
		return nil
	}
	t := c.compileTypeExpr(n.Children[0], ctx.ExprContext)
	if t == nil {
		return nil
	}
	if !ctx.Declare(&Symbol{Name: n.Name, Kind: SymbolVariable, Type: t, Range: toIRRange(n.Range)}) {
		c.errorf(toIRRange(n.Range), "%q is already declared in this scope", n.Name)
		return nil
	}
	node := ir.NewNode(ir.StmtDeclareVariable, toIRRange(n.Range))
	node.Name = n.Name
	node.Type = t
	return node
}

// compileDefineVariable implements `T x = e;` (spec §4.6.2 "Define").
func (c *Compiler) compileDefineVariable(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed variable definition")
		return nil
	}
	lhs := c.compileTypeExpr(n.Children[0], ctx.ExprContext)
	rhs := c.compileValueExpr(n.Children[1], ctx.ExprContext)
	if lhs == nil || rhs == nil {
		return nil
	}
	if c.forge.IsTypeAssignable(lhs, rhs.Type) == types.Never {
		c.errorf(toIRRange(n.Range), "cannot assign %s to %s", rhs.Type, lhs)
		return nil
	}
	if !ctx.Declare(&Symbol{Name: n.Name, Kind: SymbolVariable, Type: lhs, Range: toIRRange(n.Range)}) {
		c.errorf(toIRRange(n.Range), "%q is already declared in this scope", n.Name)
		return nil
	}
	node := ir.NewNode(ir.StmtDefineVariable, toIRRange(n.Range), rhs)
	node.Name = n.Name
	node.Type = lhs
	return node
}

// compileDefineFunction implements `R f(params...) { body }` (spec §4.6.2).
// The symbol for f is added before the body is compiled so recursion works.
func (c *Compiler) compileDefineFunction(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed function definition")
		return nil
	}
	sigNode, bodyNode := n.Children[0], n.Children[1]
	sig := c.compileFunctionSignatureTypeExpr(sigNode, ctx.ExprContext)
	if sig == nil {
		return nil
	}
	sym := &Symbol{Name: n.Name, Kind: SymbolFunction, Type: sig, Range: toIRRange(n.Range)}
	if !ctx.Declare(sym) {
		c.errorf(toIRRange(n.Range), "%q is already declared in this scope", n.Name)
		return nil
	}

	callable, _ := types.SoleCallable(sig)
	inner := newCaptureFrame(ctx.ExprContext)
	for _, p := range callable.Parameters {
		if p.Name == "" {
			continue
		}
		inner.Declare(&Symbol{Name: p.Name, Kind: SymbolParameter, Type: p.Type, Range: toIRRange(n.Range)})
	}
	innerStmt := newStmtContext(inner, nil)
	innerStmt.canReturn = &ReturnInfo{Type: callable.ReturnType}
	// A generator's declared return type names its yielded element type
	// directly when that type isn't already iterable (spec §4.6.2, §8
	// scenario 4: `int f() { yield 1; }` yields ints, it doesn't return one).
	// Whether f is actually a generator is only known once the body has been
	// compiled and canYield.Count is checked below.
	yieldElem := c.forge.ForgeIterationType(callable.ReturnType)
	if yieldElem == nil {
		yieldElem = callable.ReturnType
	}
	innerStmt.canYield = &ReturnInfo{Type: yieldElem}

	body := c.compileBlock(resource, bodyNode.Children, innerStmt)
	isGenerator := innerStmt.canYield.Count > 0
	if isGenerator {
		body = ir.NewNode(ir.StmtGeneratorInvoke, toIRRange(n.Range), body)
		sig = c.forge.ForgeFunctionType(&types.Callable{
			ReturnType: callable.ReturnType,
			Parameters: callable.Parameters,
			YieldType:  yieldElem,
		})
		sym.Type = sig
	}

	captureNames := inner.Captures()
	captureChildren := make([]*ir.Node, 0, len(captureNames))
	for _, name := range captureNames {
		capNode := ir.NewNode(ir.ExprFunctionCapture, toIRRange(n.Range))
		capNode.Name = name
		captureChildren = append(captureChildren, capNode)
	}
	fnValue := ir.NewNode(ir.ExprFunctionConstruct, toIRRange(n.Range), append([]*ir.Node{body}, captureChildren...)...)
	fnValue.Name = n.Name
	fnValue.Type = sig

	defineNode := ir.NewNode(ir.StmtDefineVariable, toIRRange(n.Range), fnValue)
	defineNode.Name = n.Name
	defineNode.Type = sig
	return defineNode
}

// compileDefineType implements `type T { ... }` declarations, registering T
// as a type symbol visible for the remainder of the enclosing scope.
func (c *Compiler) compileDefineType(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed type definition")
		return nil
	}
	t := c.compileTypeSpecification(n.Children[0], ctx.ExprContext)
	if t == nil {
		return nil
	}
	if !ctx.Declare(&Symbol{Name: n.Name, Kind: SymbolType, Type: t, Range: toIRRange(n.Range)}) {
		c.errorf(toIRRange(n.Range), "%q is already declared in this scope", n.Name)
		return nil
	}
	node := ir.NewNode(ir.StmtDefineType, toIRRange(n.Range))
	node.Name = n.Name
	node.Type = t
	return node
}

// compileMutate dispatches on the lhs kind (spec §4.6.2 "Mutate").
func (c *Compiler) compileMutate(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed mutate statement")
		return nil
	}
	lhsSyntax := n.Children[0]
	op, ok := mutationOps[n.Operator]
	if !ok {
		c.errorf(toIRRange(n.Range), "unknown mutation operator %q", n.Operator)
		return nil
	}

	var rhsType *types.Type = c.common.Void
	var rhsNode *ir.Node
	if len(n.Children) == 2 {
		rhsNode = c.compileValueExpr(n.Children[1], ctx.ExprContext)
		if rhsNode == nil {
			return nil
		}
		rhsType = rhsNode.Type
	}

	var targetType *types.Type
	var lhsNode *ir.Node
	switch lhsSyntax.Kind {
	case syntax.ExprVariable:
		sym, ok := ctx.Lookup(lhsSyntax.Name)
		if !ok {
			c.errorf(toIRRange(n.Range), "undefined name %q", lhsSyntax.Name)
			return nil
		}
		targetType = sym.Type
		lhsNode = ir.NewNode(ir.ExprVariableGet, toIRRange(lhsSyntax.Range))
		lhsNode.Name = lhsSyntax.Name
		lhsNode.Type = sym.Type
	case syntax.ExprProperty, syntax.ExprIndex, syntax.ExprDereference:
		compiled := c.compileValueExpr(lhsSyntax, ctx.ExprContext)
		if compiled == nil {
			return nil
		}
		targetType = compiled.Type
		lhsNode = compiled
	default:
		c.errorf(toIRRange(n.Range), "left-hand side is not mutatable")
		return nil
	}

	switch c.forge.IsTypeMutatable(targetType, op, rhsType) {
	case types.MutNeverLeft, types.MutNeverRight:
		c.errorf(toIRRange(n.Range), "operator %q is not valid on %s", n.Operator, targetType)
		return nil
	case types.MutUnnecessary:
		c.warnf(toIRRange(n.Range), "mutation %q has no effect", n.Operator)
	}

	children := []*ir.Node{lhsNode}
	if rhsNode != nil {
		children = append(children, rhsNode)
	}
	node := ir.NewNode(ir.StmtMutate, toIRRange(n.Range), children...)
	node.Operand = ir.OperandOperator
	node.IntOperand = int64(op)
	node.Type = targetType
	return node
}

var mutationOps = map[string]types.MutationOp{
	"=": types.OpAssign, "++": types.OpIncrement, "--": types.OpDecrement,
	"+=": types.OpAdd, "-=": types.OpSubtract, "*=": types.OpMultiply,
	"/=": types.OpDivide, "%=": types.OpRemainder,
	"&=": types.OpBitwiseAnd, "|=": types.OpBitwiseOr, "^=": types.OpBitwiseXor,
	"<<=": types.OpShiftLeft, ">>=": types.OpShiftRight, ">>>=": types.OpShiftRightUnsigned,
	"??=": types.OpIfNull, "!!=": types.OpIfVoid, "||=": types.OpIfFalse, "&&=": types.OpIfTrue,
}

// compileForEach implements `for (var x : iterable) body` (spec §4.6.2).
func (c *Compiler) compileForEach(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed for-each statement")
		return nil
	}
	iterable := c.compileValueExpr(n.Children[0], ctx.ExprContext)
	if iterable == nil {
		return nil
	}
	elemType := c.forge.ForgeIterationType(iterable.Type)
	if elemType == nil {
		c.errorf(toIRRange(n.Range), "type %s is not iterable", iterable.Type)
		return nil
	}
	inner := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	inner.canBreak, inner.canContinue = true, true
	inner.Declare(&Symbol{Name: n.Name, Kind: SymbolVariable, Type: elemType, Range: toIRRange(n.Range)})

	body := c.compileBlock(resource, n.Children[1].Children, inner)
	node := ir.NewNode(ir.StmtForEach, toIRRange(n.Range), iterable, body)
	node.Name = n.Name
	node.Type = elemType
	return node
}

// compileForLoop implements `for (init; cond; step) body` (spec §4.6.2),
// hoisting a declaring init into an outer block so its scope covers cond,
// step, and body.
func (c *Compiler) compileForLoop(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 4 {
		c.errorf(toIRRange(n.Range), "malformed for-loop statement")
		return nil
	}
	initSyntax, condSyntax, stepSyntax, bodySyntax := n.Children[0], n.Children[1], n.Children[2], n.Children[3]

	outer := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	outer.canBreak, outer.canContinue = true, true

	var initNode *ir.Node
	if initSyntax.Kind != syntax.ExprMissing {
		initNode = c.compileStmt(resource, initSyntax, outer)
		if initNode == nil {
			return nil
		}
	}

	var condNode *ir.Node
	if condSyntax.Kind == syntax.ExprMissing {
		condNode = c.compileValueExpr(condSyntax, outer.ExprContext)
	} else {
		condNode = c.compileValueExpr(condSyntax, outer.ExprContext)
		if condNode != nil && !condNode.Type.Flags.HasAny(types.Bool) {
			c.errorf(toIRRange(condSyntax.Range), "for-loop condition must be bool, got %s", condNode.Type.Flags)
			condNode = nil
		}
	}
	if condNode == nil {
		return nil
	}

	var stepNode *ir.Node
	if stepSyntax.Kind != syntax.ExprMissing {
		stepNode = c.compileStmt(resource, stepSyntax, outer)
		if stepNode == nil {
			return nil
		}
	}

	body := c.compileBlock(resource, bodySyntax.Children, outer)

	// Always emit exactly four children (init, cond, body, step) so the
	// runtime never has to guess which optional slot is missing from a
	// variable-length list; an absent init/step becomes a no-op empty block.
	if initNode == nil {
		initNode = ir.NewNode(ir.StmtBlock, toIRRange(n.Range))
	}
	if stepNode == nil {
		stepNode = ir.NewNode(ir.StmtBlock, toIRRange(n.Range))
	}
	return ir.NewNode(ir.StmtForLoop, toIRRange(n.Range), initNode, condNode, body, stepNode)
}

// compileIf implements if/else with optional guard conditions (spec
// §4.6.2): a guard introduces its variable into the truthy branch only.
func (c *Compiler) compileIf(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) < 2 || len(n.Children) > 3 {
		c.errorf(toIRRange(n.Range), "malformed if statement")
		return nil
	}
	condSyntax, thenSyntax := n.Children[0], n.Children[1]
	thenCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	cond := c.compileCondition(condSyntax, thenCtx)
	if cond == nil {
		return nil
	}
	thenBlock := c.compileBlock(resource, thenSyntax.Children, thenCtx)
	children := []*ir.Node{cond, thenBlock}
	if len(n.Children) == 3 {
		elseCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
		elseBlock := c.compileBlock(resource, n.Children[2].Children, elseCtx)
		children = append(children, elseBlock)
	}
	return ir.NewNode(ir.StmtIf, toIRRange(n.Range), children...)
}

// compileCondition compiles either a guard (`T x = expr`) or a plain bool
// expression, declaring the guard's name into declCtx when present.
func (c *Compiler) compileCondition(n *syntax.Node, declCtx *StmtContext) *ir.Node {
	if n.Kind == syntax.ExprGuard {
		guard := c.compileGuard(n, declCtx.ExprContext)
		if guard == nil {
			return nil
		}
		declCtx.Declare(&Symbol{Name: n.Name, Kind: SymbolVariable, Type: guard.Children[0].Type, Range: toIRRange(n.Range)})
		return guard
	}
	cond := c.compileValueExpr(n, declCtx.ExprContext)
	if cond == nil {
		return nil
	}
	if !cond.Type.Flags.HasAny(types.Bool) {
		c.errorf(toIRRange(n.Range), "condition must be bool, got %s", cond.Type.Flags)
		return nil
	}
	return cond
}

// compileWhile implements while loops with optional guard condition (spec
// §4.6.2): the guard variable is declared in the block wrapping the loop.
func (c *Compiler) compileWhile(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed while statement")
		return nil
	}
	outer := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	outer.canBreak, outer.canContinue = true, true
	cond := c.compileCondition(n.Children[0], outer)
	if cond == nil {
		return nil
	}
	body := c.compileBlock(resource, n.Children[1].Children, outer)
	return ir.NewNode(ir.StmtWhile, toIRRange(n.Range), cond, body)
}

// compileDo implements do/while loops.
func (c *Compiler) compileDo(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed do statement")
		return nil
	}
	outer := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	outer.canBreak, outer.canContinue = true, true
	body := c.compileBlock(resource, n.Children[0].Children, outer)
	cond := c.compileValueExpr(n.Children[1], outer.ExprContext)
	if cond == nil {
		return nil
	}
	if !cond.Type.Flags.HasAny(types.Bool) {
		c.errorf(toIRRange(n.Range), "do-while condition must be bool, got %s", cond.Type.Flags)
		return nil
	}
	return ir.NewNode(ir.StmtDo, toIRRange(n.Range), body, cond)
}

// compileTry implements try/catch*/finally? (spec §4.6.2): canRethrow is
// false inside the try block and true inside each catch; at most one
// finally, and it must be last.
func (c *Compiler) compileTry(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed try statement")
		return nil
	}
	tryBodySyntax := n.Children[0]
	tryCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
	tryCtx.canRethrow = false
	tryBody := c.compileBlock(resource, tryBodySyntax.Children, tryCtx)

	children := []*ir.Node{tryBody}
	sawFinally := false
	for _, clause := range n.Children[1:] {
		switch clause.Kind {
		case syntax.StmtCatch:
			if sawFinally {
				c.errorf(toIRRange(clause.Range), "catch cannot follow finally")
				continue
			}
			if len(clause.Children) != 2 {
				c.errorf(toIRRange(clause.Range), "malformed catch clause")
				continue
			}
			catchType := c.compileTypeExpr(clause.Children[0], ctx.ExprContext)
			if catchType == nil {
				continue
			}
			catchCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
			catchCtx.canRethrow = true
			catchCtx.Declare(&Symbol{Name: clause.Name, Kind: SymbolVariable, Type: catchType, Range: toIRRange(clause.Range)})
			catchBody := c.compileBlock(resource, clause.Children[1].Children, catchCtx)
			catchNode := ir.NewNode(ir.StmtCatch, toIRRange(clause.Range), catchBody)
			catchNode.Name = clause.Name
			catchNode.Type = catchType
			children = append(children, catchNode)
		case syntax.StmtFinally:
			if sawFinally {
				c.errorf(toIRRange(clause.Range), "only one finally clause is permitted")
				continue
			}
			sawFinally = true
			finallyCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
			finallyBody := c.compileBlock(resource, clause.Children, finallyCtx)
			children = append(children, ir.NewNode(ir.StmtFinally, toIRRange(clause.Range), finallyBody))
		default:
			c.errorf(toIRRange(clause.Range), "expected catch or finally clause")
		}
	}
	return ir.NewNode(ir.StmtTry, toIRRange(n.Range), children...)
}

// compileSwitch validates clause ordering and emits stmtSwitch(subject,
// cases...) (spec §4.6.2: "Emit a stmtSwitch(subject, defaultIndex) with a
// sequence of stmtCase(block, labels...) children"). Each clause's trailing
// StmtBlock child is its body; any children before it are case labels
// (constant-ish value expressions matched against the subject at runtime).
// A default clause carries no labels.
func (c *Compiler) compileSwitch(resource string, n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed switch statement")
		return nil
	}
	subject := c.compileValueExpr(n.Children[0], ctx.ExprContext)
	if subject == nil {
		return nil
	}
	clauses := n.Children[1:]
	defaultIndex := -1
	children := []*ir.Node{subject}
	for i, clause := range clauses {
		isDefault := clause.Kind == syntax.StmtDefault
		if isDefault {
			if defaultIndex != -1 {
				c.errorf(toIRRange(clause.Range), "only one default clause is permitted")
				continue
			}
			defaultIndex = i
		} else if clause.Kind != syntax.StmtCase {
			c.errorf(toIRRange(clause.Range), "expected case or default clause")
			continue
		}
		if len(clause.Children) < 1 || clause.Children[len(clause.Children)-1].Kind != syntax.StmtBlock {
			c.errorf(toIRRange(clause.Range), "case clause must end with a statement block")
			continue
		}
		bodySyntax := clause.Children[len(clause.Children)-1]
		if len(bodySyntax.Children) == 0 {
			c.errorf(toIRRange(clause.Range), "expected at least one statement within case/default clause")
			continue
		}
		labelSyntax := clause.Children[:len(clause.Children)-1]
		if isDefault && len(labelSyntax) > 0 {
			c.errorf(toIRRange(clause.Range), "default clause cannot have labels")
			continue
		}
		if !isDefault && len(labelSyntax) == 0 {
			c.errorf(toIRRange(clause.Range), "case clause must have at least one label")
			continue
		}

		labels := make([]*ir.Node, 0, len(labelSyntax))
		ok := true
		for _, ls := range labelSyntax {
			label := c.compileValueExpr(ls, ctx.ExprContext)
			if label == nil {
				ok = false
				continue
			}
			if c.forge.IsTypeAssignable(subject.Type, label.Type) == types.Never {
				c.errorf(toIRRange(ls.Range), "case label of type %s cannot match switch subject of type %s", label.Type, subject.Type)
				ok = false
				continue
			}
			labels = append(labels, label)
		}
		if !ok {
			continue
		}

		caseCtx := newStmtContext(newExprContext(ctx.ExprContext), ctx)
		caseCtx.canBreak, caseCtx.canContinue = true, true
		body := c.compileBlock(resource, bodySyntax.Children, caseCtx)
		caseNode := ir.NewNode(ir.StmtCase, toIRRange(clause.Range), append([]*ir.Node{body}, labels...)...)
		caseNode.Operand = ir.OperandInt
		caseNode.IntOperand = int64(len(labels))
		children = append(children, caseNode)
	}
	node := ir.NewNode(ir.StmtSwitch, toIRRange(n.Range), children...)
	node.IntOperand = int64(defaultIndex)
	node.Operand = ir.OperandInt
	return node
}

// compileReturn implements `return [expr];` (spec §4.6.2): valid only when
// canReturn is set; a generator's return must be bare.
func (c *Compiler) compileReturn(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if ctx.canReturn == nil {
		c.errorf(toIRRange(n.Range), "return is only valid inside a function")
		return nil
	}
	ctx.canReturn.Count++
	if len(n.Children) == 0 {
		if ctx.canYield != nil && ctx.canYield.Count > 0 {
			return ir.NewNode(ir.StmtReturn, toIRRange(n.Range))
		}
		return ir.NewNode(ir.StmtReturn, toIRRange(n.Range))
	}
	if ctx.canYield != nil && ctx.canYield.Count > 0 {
		c.errorf(toIRRange(n.Range), "a generator's return must be bare")
		return nil
	}
	v := c.compileValueExpr(n.Children[0], ctx.ExprContext)
	if v == nil {
		return nil
	}
	if c.forge.IsTypeAssignable(ctx.canReturn.Type, v.Type) == types.Never {
		c.errorf(toIRRange(n.Range), "cannot return %s from a function declared to return %s", v.Type, ctx.canReturn.Type)
		return nil
	}
	return ir.NewNode(ir.StmtReturn, toIRRange(n.Range), v)
}

// compileYield implements the four yield forms of spec §4.6.2.
func (c *Compiler) compileYield(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if ctx.canYield == nil {
		c.errorf(toIRRange(n.Range), "yield is only valid inside a generator function")
		return nil
	}
	ctx.canYield.Count++
	switch n.Operator {
	case "break":
		return ir.NewNode(ir.StmtYield, toIRRange(n.Range))
	case "continue":
		node := ir.NewNode(ir.StmtYield, toIRRange(n.Range))
		node.Operand = ir.OperandInt
		node.IntOperand = 1
		return node
	case "spread":
		if len(n.Children) != 1 {
			c.errorf(toIRRange(n.Range), "malformed spread yield")
			return nil
		}
		// Open Question 3 resolved: only spread yield sets the array
		// element hint (see DESIGN.md); a bare `yield [..]` does not.
		ctx.SetArrayHint(ctx.canYield.Type)
		v := c.compileValueExpr(n.Children[0], ctx.ExprContext)
		ctx.SetArrayHint(nil)
		if v == nil {
			return nil
		}
		elem := c.forge.ForgeIterationType(v.Type)
		if elem == nil {
			c.errorf(toIRRange(n.Range), "spread yield requires an iterable, got %s", v.Type)
			return nil
		}
		node := ir.NewNode(ir.StmtYield, toIRRange(n.Range), v)
		node.Operand = ir.OperandInt
		node.IntOperand = 2
		return node
	default:
		if len(n.Children) != 1 {
			c.errorf(toIRRange(n.Range), "malformed yield statement")
			return nil
		}
		v := c.compileValueExpr(n.Children[0], ctx.ExprContext)
		if v == nil {
			return nil
		}
		if c.forge.IsTypeAssignable(ctx.canYield.Type, v.Type) == types.Never {
			c.errorf(toIRRange(n.Range), "cannot yield %s from a generator yielding %s", v.Type, ctx.canYield.Type)
			return nil
		}
		return ir.NewNode(ir.StmtYield, toIRRange(n.Range), v)
	}
}

// compileThrow implements `throw [expr];` (spec §4.6.2): bare form requires
// canRethrow.
func (c *Compiler) compileThrow(n *syntax.Node, ctx *StmtContext) *ir.Node {
	if len(n.Children) == 0 {
		if !ctx.canRethrow {
			c.errorf(toIRRange(n.Range), "bare throw is only valid inside a catch clause")
			return nil
		}
		return ir.NewNode(ir.StmtThrow, toIRRange(n.Range))
	}
	v := c.compileValueExpr(n.Children[0], ctx.ExprContext)
	if v == nil {
		return nil
	}
	return ir.NewNode(ir.StmtThrow, toIRRange(n.Range), v)
}
