package runtime

import (
	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/types"
	"egg/internal/value"
)

// execStmt executes one Module IR statement node, returning the settled
// value of whatever flow-control construct it produced: Void for an
// ordinary statement, or a Break/Continue/Return/Yield/Throw marker that
// the caller must propagate (spec §4.5.1, §4.7).
func (r *Runtime) execStmt(e Env, node *ir.Node) (value.Value, error) {
	if v, cancelled := checkCancelled(e.ctx); cancelled {
		return v, nil
	}
	switch node.Kind {
	case ir.StmtBlock:
		return r.execBlock(e, node)
	case ir.StmtDeclareVariable:
		e.scope.declare(node.Name, value.NewSlot(zeroValue(node.Type)))
		return value.Void, nil
	case ir.StmtDefineVariable:
		// A function definition's name must be visible to its own captures
		// before the function value exists, or recursion would capture
		// nothing (spec §4.6.2: the symbol is added before the body).
		if fnNode := node.Children[0]; fnNode.Kind == ir.ExprFunctionConstruct {
			slot := value.NewSlot(value.Null)
			e.scope.declare(node.Name, slot)
			v := r.evalFunctionConstruct(e, fnNode)
			demoteIfObject(v)
			if _, err := slot.Mutate(types.OpAssign, func() (value.Value, error) { return v, nil }); err != nil {
				return value.Value{}, err
			}
			return value.Void, nil
		}
		v, err := r.eval(e, node.Children[0])
		if err != nil || v.IsFlowControl() {
			return v, err
		}
		demoteIfObject(v)
		e.scope.declare(node.Name, value.NewSlot(v))
		return value.Void, nil
	case ir.StmtDefineType:
		return value.Void, nil
	case ir.StmtMutate:
		return r.execMutate(e, node)
	case ir.StmtForEach:
		return r.execForEach(e, node)
	case ir.StmtForLoop:
		return r.execForLoop(e, node)
	case ir.StmtIf:
		return r.execIf(e, node)
	case ir.StmtWhile:
		return r.execWhile(e, node)
	case ir.StmtDo:
		return r.execDo(e, node)
	case ir.StmtSwitch:
		return r.execSwitch(e, node)
	case ir.StmtTry:
		return r.execTry(e, node)
	case ir.StmtReturn:
		if len(node.Children) == 0 {
			return value.NewReturn(nil), nil
		}
		v, err := r.eval(e, node.Children[0])
		if err != nil || v.IsFlowControl() {
			return v, err
		}
		return value.NewReturn(&v), nil
	case ir.StmtYield:
		return r.execYield(e, node)
	case ir.StmtThrow:
		if len(node.Children) == 0 {
			if e.exception != nil {
				return value.NewThrow(e.exception), nil
			}
			return value.Rethrow, nil
		}
		v, err := r.eval(e, node.Children[0])
		if err != nil || v.IsFlowControl() {
			return v, err
		}
		return value.NewThrow(&v), nil
	case ir.StmtBreak:
		return value.Break, nil
	case ir.StmtContinue:
		return value.Continue, nil
	case ir.StmtExpression:
		v, err := r.eval(e, node.Children[0])
		if err != nil {
			return value.Value{}, err
		}
		if v.IsFlowControl() {
			return v, nil
		}
		return value.Void, nil
	case ir.StmtGeneratorInvoke:
		return r.execStmt(e, node.Children[0])
	default:
		return value.Value{}, diag.Internal("execStmt: unhandled node kind %d", node.Kind)
	}
}

// execBlock runs a StmtBlock's children in a fresh child scope, stopping at
// the first child that produces a flow-control result (spec §4.7).
func (r *Runtime) execBlock(e Env, node *ir.Node) (value.Value, error) {
	inner := e.withScope(newScope(e.scope))
	for _, child := range node.Children {
		v, err := r.execStmt(inner, child)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsFlowControl() {
			return v, nil
		}
	}
	return value.Void, nil
}

// resolveSlot re-derives the *value.Slot an lvalue expression node refers
// to (spec §4.6.2 "Mutate"): the compiler reuses ordinary "get" node shapes
// for mutate's lhs and &lvalue's operand instead of emitting a dedicated
// slot-reference kind, so the runtime must pattern-match the node kind and
// re-evaluate the base sub-expression to recover the live slot.
func (r *Runtime) resolveSlot(e Env, node *ir.Node) (*value.Slot, error) {
	switch node.Kind {
	case ir.ExprVariableGet:
		slot, ok := e.scope.lookup(node.Name)
		if !ok {
			return nil, diag.Internal("resolveSlot: undefined variable %q", node.Name)
		}
		return slot, nil
	case ir.ExprPropertyGet:
		base, err := r.eval(e, node.Children[0])
		if err != nil {
			return nil, err
		}
		if base.IsFlowControl() {
			return nil, diag.Internal("resolveSlot: property base did not evaluate to a value")
		}
		obj, ok := base.AsObject()
		if !ok {
			return nil, diag.Internal("resolveSlot: property base is not an object")
		}
		dot, ok := obj.(*DotObject)
		if !ok {
			return nil, diag.Internal("resolveSlot: property base is not dotable")
		}
		slot, ok := dot.get(node.Name)
		if !ok {
			return nil, diag.Internal("resolveSlot: no property %q", node.Name)
		}
		return slot, nil
	case ir.ExprIndex:
		base, err := r.eval(e, node.Children[0])
		if err != nil {
			return nil, err
		}
		idxVal, err := r.eval(e, node.Children[1])
		if err != nil {
			return nil, err
		}
		obj, ok := base.AsObject()
		if !ok {
			return nil, diag.Internal("resolveSlot: index base is not an object")
		}
		arr, ok := obj.(*ArrayObject)
		if !ok {
			return nil, diag.Internal("resolveSlot: index base is not an array")
		}
		idx, _ := idxVal.Int()
		if idx < 0 || int(idx) >= len(arr.Elements) {
			return nil, diag.Internal("index %d out of range (length %d)", idx, len(arr.Elements))
		}
		return arr.Elements[idx], nil
	case ir.ExprDereference:
		ptrVal, err := r.eval(e, node.Children[0])
		if err != nil {
			return nil, err
		}
		obj, ok := ptrVal.AsObject()
		if !ok {
			return nil, diag.Internal("resolveSlot: dereference target is not a pointer")
		}
		ptr, ok := obj.(*PointerObject)
		if !ok {
			return nil, diag.Internal("resolveSlot: dereference target is not a pointer")
		}
		return ptr.Target, nil
	default:
		return nil, diag.Internal("resolveSlot: node kind %d is not an lvalue", node.Kind)
	}
}

// execMutate implements StmtMutate: resolve the target slot, evaluate the
// rhs (if any), and dispatch through value.Slot.Mutate (spec §4.5.2,
// §4.6.2).
func (r *Runtime) execMutate(e Env, node *ir.Node) (value.Value, error) {
	slot, err := r.resolveSlot(e, node.Children[0])
	if err != nil {
		return value.Value{}, err
	}
	var rhsNode *ir.Node
	if len(node.Children) == 2 {
		rhsNode = node.Children[1]
	}
	thunk := func() (value.Value, error) {
		if rhsNode == nil {
			return value.Void, nil
		}
		v, err := r.eval(e, rhsNode)
		if err != nil {
			return value.Value{}, err
		}
		demoteIfObject(v)
		return v, nil
	}
	op := types.MutationOp(node.IntOperand)
	_, mutErr := slot.Mutate(op, thunk)
	if mutErr != nil {
		return value.Value{}, mutErr
	}
	return value.Void, nil
}

// execForEach implements `for (T x : iterable) body` (spec §4.6.2).
func (r *Runtime) execForEach(e Env, node *ir.Node) (value.Value, error) {
	iterableNode, bodyNode := node.Children[0], node.Children[1]
	iterableVal, err := r.eval(e, iterableNode)
	if err != nil {
		return value.Value{}, err
	}
	if iterableVal.IsFlowControl() {
		return iterableVal, nil
	}
	next, stop, err := r.iterate(iterableVal)
	if err != nil {
		return value.Value{}, err
	}
	defer stop()
	outer := e.withScope(newScope(e.scope))
	for {
		if v, cancelled := checkCancelled(e.ctx); cancelled {
			return v, nil
		}
		elem, hasMore, err := next(e.ctx)
		if err != nil {
			return value.Value{}, err
		}
		if elem.IsFlowControl() {
			return elem, nil
		}
		if !hasMore {
			return value.Void, nil
		}
		iter := outer.withScope(newScope(outer.scope))
		iter.scope.declare(node.Name, value.NewSlot(elem))
		v, err := r.execStmt(iter, bodyNode)
		if err != nil {
			return value.Value{}, err
		}
		if v.Is(types.Break) {
			return value.Void, nil
		}
		if v.IsFlowControl() && !v.Is(types.Continue) {
			return v, nil
		}
	}
}

// execForLoop implements the four-child canonical for-loop shape (spec
// §4.6.2): init and step are always present, as empty blocks when omitted.
func (r *Runtime) execForLoop(e Env, node *ir.Node) (value.Value, error) {
	initNode, condNode, bodyNode, stepNode := node.Children[0], node.Children[1], node.Children[2], node.Children[3]
	outer := e.withScope(newScope(e.scope))
	if v, err := r.execStmt(outer, initNode); err != nil || v.IsFlowControl() {
		return v, err
	}
	for {
		if v, cancelled := checkCancelled(e.ctx); cancelled {
			return v, nil
		}
		cond, err := r.evalCondition(outer, condNode)
		if err != nil {
			return value.Value{}, err
		}
		if cond.flowControl {
			return cond.flow, nil
		}
		if !cond.ok {
			return value.Value{}, diag.Internal("for-loop condition did not evaluate to bool")
		}
		if !cond.passed {
			return value.Void, nil
		}
		body := outer.withScope(newScope(outer.scope))
		if cond.declareName != "" {
			body.scope.declare(cond.declareName, value.NewSlot(cond.declareValue))
		}
		v, err := r.execStmt(body, bodyNode)
		if err != nil {
			return value.Value{}, err
		}
		if v.Is(types.Break) {
			return value.Void, nil
		}
		if v.IsFlowControl() && !v.Is(types.Continue) {
			return v, nil
		}
		if v, err := r.execStmt(outer, stepNode); err != nil || v.IsFlowControl() {
			return v, err
		}
	}
}

// execIf implements if/else with an optional guard condition (spec
// §4.6.2).
func (r *Runtime) execIf(e Env, node *ir.Node) (value.Value, error) {
	condNode, thenNode := node.Children[0], node.Children[1]
	cond, err := r.evalCondition(e, condNode)
	if err != nil {
		return value.Value{}, err
	}
	if cond.flowControl {
		return cond.flow, nil
	}
	if !cond.ok {
		return value.Value{}, diag.Internal("if condition did not evaluate to bool")
	}
	if cond.passed {
		then := e.withScope(newScope(e.scope))
		if cond.declareName != "" {
			then.scope.declare(cond.declareName, value.NewSlot(cond.declareValue))
		}
		return r.execStmt(then, thenNode)
	}
	if len(node.Children) == 3 {
		return r.execStmt(e, node.Children[2])
	}
	return value.Void, nil
}

// execWhile implements while loops with an optional guard condition (spec
// §4.6.2); the guard variable is re-bound in the loop's wrapping scope each
// iteration.
func (r *Runtime) execWhile(e Env, node *ir.Node) (value.Value, error) {
	condNode, bodyNode := node.Children[0], node.Children[1]
	outer := e.withScope(newScope(e.scope))
	for {
		if v, cancelled := checkCancelled(e.ctx); cancelled {
			return v, nil
		}
		cond, err := r.evalCondition(outer, condNode)
		if err != nil {
			return value.Value{}, err
		}
		if cond.flowControl {
			return cond.flow, nil
		}
		if !cond.ok {
			return value.Value{}, diag.Internal("while condition did not evaluate to bool")
		}
		if !cond.passed {
			return value.Void, nil
		}
		if cond.declareName != "" {
			outer.scope.declare(cond.declareName, value.NewSlot(cond.declareValue))
		}
		v, err := r.execStmt(outer, bodyNode)
		if err != nil {
			return value.Value{}, err
		}
		if v.Is(types.Break) {
			return value.Void, nil
		}
		if v.IsFlowControl() && !v.Is(types.Continue) {
			return v, nil
		}
	}
}

// execDo implements do/while loops: body always runs once before the first
// condition check.
func (r *Runtime) execDo(e Env, node *ir.Node) (value.Value, error) {
	bodyNode, condNode := node.Children[0], node.Children[1]
	outer := e.withScope(newScope(e.scope))
	for {
		if v, cancelled := checkCancelled(e.ctx); cancelled {
			return v, nil
		}
		v, err := r.execStmt(outer, bodyNode)
		if err != nil {
			return value.Value{}, err
		}
		if v.Is(types.Break) {
			return value.Void, nil
		}
		if v.IsFlowControl() && !v.Is(types.Continue) {
			return v, nil
		}
		condVal, err := r.eval(outer, condNode)
		if err != nil {
			return value.Value{}, err
		}
		if condVal.IsFlowControl() {
			return condVal, nil
		}
		b, _ := condVal.Bool()
		if !b {
			return value.Void, nil
		}
	}
}

// execSwitch runs the first matching (or default) clause. A clause that
// completes normally ends the switch — there is no implicit fallthrough —
// and `break` ends it explicitly; `continue` inside a clause falls through
// to the next clause in round-robin order, wrapping past the last clause
// back to the first (spec §4.6.2 leaves this unspecified; resolved per the
// original semantics, DESIGN.md Open Questions).
func (r *Runtime) execSwitch(e Env, node *ir.Node) (value.Value, error) {
	subjectNode := node.Children[0]
	cases := node.Children[1:]
	subject, err := r.eval(e, subjectNode)
	if err != nil {
		return value.Value{}, err
	}
	if subject.IsFlowControl() {
		return subject, nil
	}
	start := -1
	for i, c := range cases {
		nLabels := int(c.IntOperand)
		labels := c.Children[1 : 1+nLabels]
		for _, label := range labels {
			lv, err := r.eval(e, label)
			if err != nil {
				return value.Value{}, err
			}
			if value.Equal(subject, lv, value.PromoteInts) {
				start = i
				break
			}
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		defaultIndex := int(node.IntOperand)
		if defaultIndex < 0 {
			return value.Void, nil
		}
		start = defaultIndex
	}
	matched := start
	for {
		body := cases[matched].Children[0]
		v, err := r.execStmt(e, body)
		if err != nil {
			return value.Value{}, err
		}
		if v.Is(types.Break) {
			return value.Void, nil
		}
		if !v.Is(types.Continue) {
			// Void for a clause that ran to completion, or a propagating
			// Return/Yield/Throw; either way the switch is over.
			return v, nil
		}
		matched++
		if matched >= len(cases) {
			matched = 0
		}
	}
}

// execTry implements try/catch*/finally? (spec §4.6.2): finally always
// runs; a flow-control result from finally overrides the try/catch
// outcome, matching the common "finally wins" semantics.
func (r *Runtime) execTry(e Env, node *ir.Node) (value.Value, error) {
	tryBody := node.Children[0]
	var catches []*ir.Node
	var finally *ir.Node
	for _, c := range node.Children[1:] {
		if c.Kind == ir.StmtFinally {
			finally = c
		} else {
			catches = append(catches, c)
		}
	}

	result, err := r.execStmt(e, tryBody)
	if err == nil && result.Is(types.Throw) && !result.IsRethrow() {
		thrown := result.Inner()
		thrownType := runtimeTypeOf(r.forge, *thrown)
		for _, catchNode := range catches {
			if r.forge.IsTypeAssignable(catchNode.Type, thrownType) == types.Never {
				continue
			}
			catchEnv := e.withScope(newScope(e.scope))
			catchEnv.scope.declare(catchNode.Name, value.NewSlot(*thrown))
			catchEnv = catchEnv.withException(thrown)
			result, err = r.execStmt(catchEnv, catchNode.Children[0])
			break
		}
	}

	if finally != nil {
		finallyResult, finallyErr := r.execStmt(e, finally.Children[0])
		if finallyErr != nil {
			return value.Value{}, finallyErr
		}
		if finallyResult.IsFlowControl() {
			return finallyResult, nil
		}
	}
	return result, err
}

// execYield implements the four yield forms (spec §4.6.2, §4.7): break ends
// the generator (modelled as a bare return so it unwinds through ordinary
// block/loop propagation), continue is a pure no-op, spread re-yields every
// element of an iterable in turn, and the plain form yields one value.
func (r *Runtime) execYield(e Env, node *ir.Node) (value.Value, error) {
	if e.generator == nil {
		return value.Value{}, diag.Internal("yield executed outside a generator")
	}
	if len(node.Children) == 0 {
		if node.Operand == ir.OperandInt && node.IntOperand == 1 {
			return value.Void, nil // yield continue
		}
		return value.NewReturn(nil), nil // yield break
	}
	if node.Operand == ir.OperandInt && node.IntOperand == 2 {
		iterableVal, err := r.eval(e, node.Children[0])
		if err != nil {
			return value.Value{}, err
		}
		if iterableVal.IsFlowControl() {
			return iterableVal, nil
		}
		next, stop, err := r.iterate(iterableVal)
		if err != nil {
			return value.Value{}, err
		}
		defer stop()
		for {
			elem, hasMore, err := next(e.ctx)
			if err != nil {
				return value.Value{}, err
			}
			if elem.IsFlowControl() {
				return elem, nil
			}
			if !hasMore {
				return value.Void, nil
			}
			if err := e.generator.yieldValue(e.ctx, elem); err != nil {
				return value.Value{}, err
			}
		}
	}
	v, err := r.eval(e, node.Children[0])
	if err != nil {
		return value.Value{}, err
	}
	if v.IsFlowControl() {
		return v, nil
	}
	if err := e.generator.yieldValue(e.ctx, v); err != nil {
		return value.Value{}, err
	}
	return value.Void, nil
}

// condResult is the outcome of evaluating an if/while/for condition slot,
// which may be a plain bool expression or a guarded-narrowing ExprGuard
// (spec §4.6.2 "Guard": "binds a narrowed name only inside the branch where
// the check passed").
type condResult struct {
	ok           bool
	passed       bool
	declareName  string
	declareValue value.Value
	flowControl  bool
	flow         value.Value
}

// evalCondition evaluates an If/While/For condition slot. compileCondition
// is the only compiler path that declares a guard's bound name (compileGuard
// itself never does), so this mirrors that: only in this call path does a
// passing ExprGuard cause a name to be bound into the branch scope.
func (r *Runtime) evalCondition(e Env, node *ir.Node) (condResult, error) {
	if node.Kind == ir.ExprGuard {
		v, err := r.eval(e, node.Children[0])
		if err != nil {
			return condResult{}, err
		}
		if v.IsFlowControl() {
			return condResult{flowControl: true, flow: v}, nil
		}
		valType := runtimeTypeOf(r.forge, v)
		passed := r.forge.IsTypeAssignable(node.Manifests, valType) != types.Never
		return condResult{ok: true, passed: passed, declareName: node.Name, declareValue: v}, nil
	}
	v, err := r.eval(e, node)
	if err != nil {
		return condResult{}, err
	}
	if v.IsFlowControl() {
		return condResult{flowControl: true, flow: v}, nil
	}
	b, ok := v.Bool()
	if !ok {
		return condResult{}, nil
	}
	return condResult{ok: true, passed: b}, nil
}

// evalGuard evaluates a standalone ExprGuard used as an ordinary boolean
// subexpression (e.g. inside `&&`): only the pass/fail Bool is produced, and
// no name is bound, matching compileGuard's own behaviour of never
// declaring its bound name itself.
func (r *Runtime) evalGuard(e Env, node *ir.Node) (value.Value, error) {
	v, err := r.eval(e, node.Children[0])
	if err != nil {
		return value.Value{}, err
	}
	if v.IsFlowControl() {
		return v, nil
	}
	valType := runtimeTypeOf(r.forge, v)
	passed := r.forge.IsTypeAssignable(node.Manifests, valType) != types.Never
	return value.NewBool(passed), nil
}
