package runtime

import (
	"context"
	"fmt"
	"math"

	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/text"
	"egg/internal/types"
	"egg/internal/value"
)

// eval evaluates one Module IR expression node to a value. A returned value
// with a flow-control flag set (Throw, most commonly) must be propagated by
// the caller exactly like execStmt's flow-control results (spec §4.7).
func (r *Runtime) eval(e Env, node *ir.Node) (value.Value, error) {
	if v, cancelled := checkCancelled(e.ctx); cancelled {
		return v, nil
	}
	switch node.Kind {
	case ir.ExprLiteral:
		return evalLiteral(node), nil
	case ir.ExprVariableGet:
		slot, ok := e.scope.lookup(node.Name)
		if !ok {
			return value.Value{}, diag.Internal("eval: undefined variable %q", node.Name)
		}
		return slot.Get(), nil
	case ir.ExprTypeVariableGet:
		return value.NewManifestation(node.Type), nil
	case ir.ExprUnary:
		return r.evalUnary(e, node)
	case ir.ExprBinary:
		return r.evalBinary(e, node)
	case ir.ExprTernary:
		return r.evalTernary(e, node)
	case ir.ExprCall:
		return r.evalCall(e, node)
	case ir.ExprIndex:
		return r.evalIndex(e, node)
	case ir.ExprPropertyGet:
		return r.evalPropertyGet(e, node)
	case ir.ExprReference:
		return r.evalReference(e, node)
	case ir.ExprDereference:
		return r.evalDereference(e, node)
	case ir.ExprArray:
		return r.evalArray(e, node)
	case ir.ExprObject, ir.ExprEon:
		return r.evalObjectLiteral(e, node)
	case ir.ExprGuard:
		return r.evalGuard(e, node)
	case ir.ExprTypeManifestation:
		return value.NewManifestation(node.Manifests), nil
	case ir.ExprFunctionConstruct:
		return r.evalFunctionConstruct(e, node), nil
	case ir.ExprValuePredicateOp:
		return r.evalValuePredicateOp(e, node)
	case ir.ExprEllipsis:
		// Only meaningful inside a spreadable context (call args, array
		// elements, yield-spread); evalSpreadable handles it directly and
		// never calls back into eval for this node kind.
		return value.Value{}, diag.Internal("eval: spread expression used outside a spreadable context")
	default:
		return value.Value{}, diag.Internal("eval: unhandled node kind %d", node.Kind)
	}
}

func evalLiteral(node *ir.Node) value.Value {
	switch {
	case node.Type.Flags.HasAny(types.Void):
		return value.Void
	case node.Type.Flags.HasAny(types.Null):
		return value.Null
	case node.Operand == ir.OperandInt && node.Type.Flags.HasAny(types.Bool):
		return value.NewBool(node.IntOperand != 0)
	case node.Operand == ir.OperandInt:
		return value.NewInt(node.IntOperand)
	case node.Operand == ir.OperandFloat:
		return value.NewFloat(node.FloatOperand)
	case node.Operand == ir.OperandString:
		return value.NewString(text.New(node.StringOperand))
	default:
		return value.Void
	}
}

func (r *Runtime) evalUnary(e Env, node *ir.Node) (value.Value, error) {
	v, err := r.eval(e, node.Children[0])
	if err != nil || v.IsFlowControl() {
		return v, err
	}
	return applyUnary(ir.UnaryOp(node.IntOperand), v)
}

// evalBinary implements the non-short-circuit operators eagerly and the
// lazy-rhs ones (??, !!, ||, &&) by only evaluating rhs when needed (spec
// §4.6.5).
func (r *Runtime) evalBinary(e Env, node *ir.Node) (value.Value, error) {
	op := ir.BinaryOp(node.IntOperand)
	lhs, err := r.eval(e, node.Children[0])
	if err != nil || lhs.IsFlowControl() {
		return lhs, err
	}
	switch op {
	case ir.BinaryNullCoalesce:
		if lhs.Is(types.Null) {
			return r.eval(e, node.Children[1])
		}
		return lhs, nil
	case ir.BinaryVoidCoalesce:
		if lhs.Is(types.Void) {
			return r.eval(e, node.Children[1])
		}
		return lhs, nil
	case ir.BinaryLogicalOr:
		if b, ok := lhs.Bool(); ok && b {
			return lhs, nil
		}
		return r.eval(e, node.Children[1])
	case ir.BinaryLogicalAnd:
		if b, ok := lhs.Bool(); ok && !b {
			return lhs, nil
		}
		return r.eval(e, node.Children[1])
	}
	rhs, err := r.eval(e, node.Children[1])
	if err != nil || rhs.IsFlowControl() {
		return rhs, err
	}
	return applyBinary(op, lhs, rhs)
}

func (r *Runtime) evalTernary(e Env, node *ir.Node) (value.Value, error) {
	cond, err := r.eval(e, node.Children[0])
	if err != nil || cond.IsFlowControl() {
		return cond, err
	}
	b, ok := cond.Bool()
	if !ok {
		return value.Value{}, diag.Internal("ternary condition did not evaluate to bool")
	}
	if b {
		return r.eval(e, node.Children[1])
	}
	return r.eval(e, node.Children[2])
}

// evalSpreadable evaluates a single argument/element node, expanding an
// ExprEllipsis into every element of its iterable instead of one value
// (spec §4.6.4 "Ellipsis": the compiler only records the element type
// statically; expansion happens at runtime).
func (r *Runtime) evalSpreadable(e Env, node *ir.Node) ([]value.Value, error) {
	if node.Kind != ir.ExprEllipsis {
		v, err := r.eval(e, node)
		if err != nil {
			return nil, err
		}
		if v.IsFlowControl() {
			return []value.Value{v}, nil
		}
		return []value.Value{v}, nil
	}
	iterableVal, err := r.eval(e, node.Children[0])
	if err != nil {
		return nil, err
	}
	if iterableVal.IsFlowControl() {
		return []value.Value{iterableVal}, nil
	}
	next, stop, err := r.iterate(iterableVal)
	if err != nil {
		return nil, err
	}
	defer stop()
	var out []value.Value
	for {
		elem, hasMore, err := next(e.ctx)
		if err != nil {
			return nil, err
		}
		if elem.IsFlowControl() {
			return []value.Value{elem}, nil
		}
		if !hasMore {
			return out, nil
		}
		out = append(out, elem)
	}
}

// evalNodeList evaluates a slice of argument/element nodes in order,
// expanding spreads, and short-circuits on the first flow-control result.
func (r *Runtime) evalNodeList(e Env, nodes []*ir.Node) ([]value.Value, value.Value, error) {
	var out []value.Value
	for _, n := range nodes {
		vs, err := r.evalSpreadable(e, n)
		if err != nil {
			return nil, value.Value{}, err
		}
		if len(vs) == 1 && vs[0].IsFlowControl() {
			return nil, vs[0], nil
		}
		out = append(out, vs...)
	}
	return out, value.Value{}, nil
}

func (r *Runtime) evalCall(e Env, node *ir.Node) (value.Value, error) {
	if len(node.Children) == 2 && node.Children[0].Kind == ir.ExprVariableGet && node.Children[0].Name == "assert" {
		return r.evalAssert(e, node.Children[1])
	}

	calleeVal, err := r.eval(e, node.Children[0])
	if err != nil || calleeVal.IsFlowControl() {
		return calleeVal, err
	}
	args, flow, err := r.evalNodeList(e, node.Children[1:])
	if err != nil {
		return value.Value{}, err
	}
	if flow.IsFlowControl() {
		return flow, nil
	}

	obj, ok := calleeVal.AsObject()
	if !ok {
		return value.Value{}, diag.Internal("call target is not callable")
	}
	switch fn := obj.(type) {
	case *FunctionObject:
		if fn.IsGenerator {
			it := r.startGenerator(e, fn, args)
			r.take(it)
			return value.NewObject(it), nil
		}
		return r.callFunction(e, fn, args)
	case *NativeFunction:
		return fn.Fn(e.ctx, r, args)
	default:
		return value.Value{}, diag.Internal("call target is not callable")
	}
}

// evalAssert implements spec §4.6.6: a failing comparison predicate reports
// both operand values; any other failing predicate reports a generic
// message.
func (r *Runtime) evalAssert(e Env, predNode *ir.Node) (value.Value, error) {
	if predNode.Kind == ir.ExprValuePredicateOp {
		lhs, err := r.eval(e, predNode.Children[0])
		if err != nil || lhs.IsFlowControl() {
			return lhs, err
		}
		rhs, err := r.eval(e, predNode.Children[1])
		if err != nil || rhs.IsFlowControl() {
			return rhs, err
		}
		result, err := applyBinary(ir.BinaryOp(predNode.IntOperand), lhs, rhs)
		if err != nil {
			return value.Value{}, err
		}
		if b, _ := result.Bool(); b {
			return value.Void, nil
		}
		msg := text.New(fmt.Sprintf("assertion failed: left=%s operator=%s right=%s",
			Describe(lhs), binaryOpSymbol(ir.BinaryOp(predNode.IntOperand)), Describe(rhs)))
		thrown := value.NewString(msg)
		return value.NewThrow(&thrown), nil
	}
	v, err := r.eval(e, predNode)
	if err != nil || v.IsFlowControl() {
		return v, err
	}
	b, ok := v.Bool()
	if !ok {
		return value.Value{}, diag.Internal("assert predicate did not evaluate to bool")
	}
	if b {
		return value.Void, nil
	}
	thrown := value.NewString(text.New("assertion failed"))
	return value.NewThrow(&thrown), nil
}

// binaryOpSymbol renders a BinaryOp back to its source spelling, for the
// assert failure message (spec §8 scenario 6: "message contains... operator===").
func binaryOpSymbol(op ir.BinaryOp) string {
	switch op {
	case ir.BinaryAdd:
		return "+"
	case ir.BinarySubtract:
		return "-"
	case ir.BinaryMultiply:
		return "*"
	case ir.BinaryDivide:
		return "/"
	case ir.BinaryRemainder:
		return "%"
	case ir.BinaryMin:
		return "<|"
	case ir.BinaryMax:
		return ">|"
	case ir.BinaryShiftLeft:
		return "<<"
	case ir.BinaryShiftRight:
		return ">>"
	case ir.BinaryShiftRightUnsigned:
		return ">>>"
	case ir.BinaryBitwiseAnd:
		return "&"
	case ir.BinaryBitwiseOr:
		return "|"
	case ir.BinaryBitwiseXor:
		return "^"
	case ir.BinaryLess:
		return "<"
	case ir.BinaryLessEqual:
		return "<="
	case ir.BinaryGreater:
		return ">"
	case ir.BinaryGreaterEqual:
		return ">="
	case ir.BinaryEqual:
		return "=="
	case ir.BinaryNotEqual:
		return "!="
	case ir.BinaryNullCoalesce:
		return "??"
	case ir.BinaryVoidCoalesce:
		return "!!"
	case ir.BinaryLogicalOr:
		return "||"
	case ir.BinaryLogicalAnd:
		return "&&"
	default:
		return "?"
	}
}

func (r *Runtime) evalValuePredicateOp(e Env, node *ir.Node) (value.Value, error) {
	lhs, err := r.eval(e, node.Children[0])
	if err != nil || lhs.IsFlowControl() {
		return lhs, err
	}
	rhs, err := r.eval(e, node.Children[1])
	if err != nil || rhs.IsFlowControl() {
		return rhs, err
	}
	return applyBinary(ir.BinaryOp(node.IntOperand), lhs, rhs)
}

// evalIndex implements `a[i]` over strings (one-codepoint result) and
// ArrayObjects (spec §4.6.4 "Index").
func (r *Runtime) evalIndex(e Env, node *ir.Node) (value.Value, error) {
	base, err := r.eval(e, node.Children[0])
	if err != nil || base.IsFlowControl() {
		return base, err
	}
	idxVal, err := r.eval(e, node.Children[1])
	if err != nil || idxVal.IsFlowControl() {
		return idxVal, err
	}
	idx, _ := idxVal.Int()
	if s, ok := base.String(); ok {
		sub, ok := s.At(int(idx))
		if !ok {
			return value.Value{}, diag.Internal("string index %d out of range", idx)
		}
		return value.NewString(sub), nil
	}
	obj, ok := base.AsObject()
	if !ok {
		return value.Value{}, diag.Internal("index base is not indexable")
	}
	arr, ok := obj.(*ArrayObject)
	if !ok {
		return value.Value{}, diag.Internal("index base is not an array")
	}
	if idx < 0 || int(idx) >= len(arr.Elements) {
		return value.Value{}, diag.Internal("index %d out of range (length %d)", idx, len(arr.Elements))
	}
	return arr.Elements[idx].Get(), nil
}

// evalPropertyGet implements `.name` over a DotObject, or a static
// metashape member access when the base is a type manifestation (spec
// §4.6.4 "Property", §3.4 "Metashapes"). BootstrapMetashapes only registers
// member *types*; their values are supplied here.
func (r *Runtime) evalPropertyGet(e Env, node *ir.Node) (value.Value, error) {
	if node.Children[0].Kind == ir.ExprTypeManifestation {
		manifested := node.Children[0].Manifests
		return metashapeValue(manifested, node.Name)
	}
	base, err := r.eval(e, node.Children[0])
	if err != nil || base.IsFlowControl() {
		return base, err
	}
	obj, ok := base.AsObject()
	if !ok {
		return value.Value{}, diag.Internal("property base is not an object")
	}
	dot, ok := obj.(*DotObject)
	if !ok {
		return value.Value{}, diag.Internal("property base is not dotable")
	}
	slot, ok := dot.get(node.Name)
	if !ok {
		return value.Value{}, diag.Internal("no property %q", node.Name)
	}
	return slot.Get(), nil
}

// metashapeValue supplies the actual constant value for a bootstrapped
// static member (spec §3.4): the forge only tracks the member's type.
func metashapeValue(t *types.Type, name string) (value.Value, error) {
	switch {
	case t.Flags.HasAny(types.Int):
		switch name {
		case "min":
			return value.NewInt(math.MinInt64), nil
		case "max":
			return value.NewInt(math.MaxInt64), nil
		}
	case t.Flags.HasAny(types.Float):
		switch name {
		case "min":
			return value.NewFloat(-math.MaxFloat64), nil
		case "max":
			return value.NewFloat(math.MaxFloat64), nil
		case "nan":
			return value.NewFloat(math.NaN()), nil
		case "infinity":
			return value.NewFloat(math.Inf(1)), nil
		}
	case t.Flags.HasAny(types.String):
		if name == "empty" {
			return value.NewString(text.Empty()), nil
		}
	}
	return value.Value{}, diag.Internal("no static member %q on %s", name, t)
}

func (r *Runtime) evalReference(e Env, node *ir.Node) (value.Value, error) {
	slot, err := r.resolveSlot(e, node.Children[0])
	if err != nil {
		return value.Value{}, err
	}
	ptr := &PointerObject{Target: slot, Typ: node.Type}
	ptr.root = true
	r.take(ptr)
	return value.NewObject(ptr), nil
}

func (r *Runtime) evalDereference(e Env, node *ir.Node) (value.Value, error) {
	v, err := r.eval(e, node.Children[0])
	if err != nil || v.IsFlowControl() {
		return v, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return value.Value{}, diag.Internal("dereference target is not a pointer")
	}
	ptr, ok := obj.(*PointerObject)
	if !ok {
		return value.Value{}, diag.Internal("dereference target is not a pointer")
	}
	return ptr.Target.Get(), nil
}

// evalArray implements array literals, expanding spread elements in place
// (spec §4.6.4 "Array").
func (r *Runtime) evalArray(e Env, node *ir.Node) (value.Value, error) {
	vals, flow, err := r.evalNodeList(e, node.Children)
	if err != nil {
		return value.Value{}, err
	}
	if flow.IsFlowControl() {
		return flow, nil
	}
	elems := make([]*value.Slot, len(vals))
	for i, v := range vals {
		demoteIfObject(v)
		elems[i] = value.NewSlot(v)
	}
	arr := &ArrayObject{Elements: elems, Typ: node.Type}
	arr.root = true
	r.take(arr)
	return value.NewObject(arr), nil
}

// evalObjectLiteral implements both ExprObject and ExprEon (plain
// named-property bags; methods are just function-valued properties, spec
// §4.6.4 "Object", "Eon").
func (r *Runtime) evalObjectLiteral(e Env, node *ir.Node) (value.Value, error) {
	properties := make(map[string]*value.Slot, len(node.Children))
	order := make([]string, 0, len(node.Children))
	for _, pair := range node.Children {
		if pair.Kind != ir.ExprNamedPair {
			continue
		}
		v, err := r.eval(e, pair.Children[0])
		if err != nil {
			return value.Value{}, err
		}
		if v.IsFlowControl() {
			return v, nil
		}
		demoteIfObject(v)
		properties[pair.Name] = value.NewSlot(v)
		order = append(order, pair.Name)
	}
	dot := &DotObject{Properties: properties, Order: order, Typ: node.Type}
	dot.root = true
	r.take(dot)
	return value.NewObject(dot), nil
}

// evalFunctionConstruct builds a FunctionObject, capturing each named slot
// live from the defining scope e.scope (spec §4.7: "closures capture
// slots, not values").
func (r *Runtime) evalFunctionConstruct(e Env, node *ir.Node) value.Value {
	body := node.Children[0]
	captures := make(map[string]*value.Slot, len(node.Children)-1)
	for _, capNode := range node.Children[1:] {
		if slot, ok := e.scope.lookup(capNode.Name); ok {
			captures[capNode.Name] = slot
		}
	}
	callable, _ := types.SoleCallable(node.Type)
	fn := &FunctionObject{
		Name:        node.Name,
		Body:        body,
		Params:      callable.Parameters,
		Captures:    captures,
		Sig:         node.Type,
		IsGenerator: callable.YieldType != nil,
	}
	fn.root = true
	r.take(fn)
	return value.NewObject(fn)
}

// iterate adapts a Value to a pull-based element cursor, covering every
// iterable runtime representation (spec §4.6.4 "ForEach"/"Ellipsis"):
// strings yield one-codepoint substrings, arrays yield their elements in
// order, and iterators (including generator-produced ones) are pulled
// directly. The stop function must be called once the caller is finished
// with the cursor, exhausted or not — it releases a generator's suspended
// body on early exits (spec §4.7: release on all exit paths); for the other
// representations it is a no-op.
func (r *Runtime) iterate(v value.Value) (next func(ctx context.Context) (value.Value, bool, error), stop func(), err error) {
	noStop := func() {}
	if s, ok := v.String(); ok {
		idx := 0
		return func(ctx context.Context) (value.Value, bool, error) {
			sub, ok := s.At(idx)
			if !ok {
				return value.Void, false, nil
			}
			idx++
			return value.NewString(sub), true, nil
		}, noStop, nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, nil, diag.Internal("value is not iterable")
	}
	switch o := obj.(type) {
	case *ArrayObject:
		idx := 0
		return func(ctx context.Context) (value.Value, bool, error) {
			if idx >= len(o.Elements) {
				return value.Void, false, nil
			}
			v := o.Elements[idx].Get()
			idx++
			return v, true, nil
		}, noStop, nil
	case *IteratorObject:
		return o.Next, o.Abandon, nil
	default:
		return nil, nil, diag.Internal("value is not iterable")
	}
}

// Describe renders a value for diagnostic output (assertion failures,
// print's builtin implementation in internal/program) — spec §4.6.6, §6.
func Describe(v value.Value) string {
	switch {
	case v.Is(types.Void):
		return "void"
	case v.Is(types.Null):
		return "null"
	}
	if b, ok := v.Bool(); ok {
		return fmt.Sprintf("%t", b)
	}
	if i, ok := v.Int(); ok {
		return fmt.Sprintf("%d", i)
	}
	if f, ok := v.Float(); ok {
		return fmt.Sprintf("%g", f)
	}
	if s, ok := v.String(); ok {
		return s.Go()
	}
	if _, ok := v.Manifests(); ok {
		return "<type>"
	}
	if obj, ok := v.AsObject(); ok {
		switch obj.(type) {
		case *ArrayObject:
			return "<array>"
		case *DotObject:
			return "<object>"
		case *PointerObject:
			return "<pointer>"
		case *FunctionObject, *NativeFunction:
			return "<function>"
		case *IteratorObject:
			return "<iterator>"
		}
	}
	return "<value>"
}
