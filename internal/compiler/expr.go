package compiler

import (
	"egg/internal/ir"
	"egg/internal/syntax"
	"egg/internal/types"
)

var unaryOps = map[string]struct {
	op       ir.UnaryOp
	required types.Flags
}{
	"-": {ir.UnaryNegate, types.Arithmetic},
	"~": {ir.UnaryBitwiseNot, types.Int},
	"!": {ir.UnaryLogicalNot, types.Bool},
}

var binaryOps = map[string]struct {
	op       ir.BinaryOp
	required types.Flags // 0 means "any type" (==, !=) or deferred (short-circuit)
	result   types.Flags // 0 means "same as operands" / computed specially
}{
	"+":   {ir.BinaryAdd, types.Arithmetic, 0},
	"-":   {ir.BinarySubtract, types.Arithmetic, 0},
	"*":   {ir.BinaryMultiply, types.Arithmetic, 0},
	"/":   {ir.BinaryDivide, types.Arithmetic, 0},
	"%":   {ir.BinaryRemainder, types.Arithmetic, 0},
	"<|":  {ir.BinaryMin, types.Arithmetic, 0},
	">|":  {ir.BinaryMax, types.Arithmetic, 0},
	"<<":  {ir.BinaryShiftLeft, types.Int, types.Int},
	">>":  {ir.BinaryShiftRight, types.Int, types.Int},
	">>>": {ir.BinaryShiftRightUnsigned, types.Int, types.Int},
	"&":   {ir.BinaryBitwiseAnd, types.Bool | types.Int, 0},
	"|":   {ir.BinaryBitwiseOr, types.Bool | types.Int, 0},
	"^":   {ir.BinaryBitwiseXor, types.Bool | types.Int, 0},
	"<":   {ir.BinaryLess, types.Arithmetic, types.Bool},
	"<=":  {ir.BinaryLessEqual, types.Arithmetic, types.Bool},
	">":   {ir.BinaryGreater, types.Arithmetic, types.Bool},
	">=":  {ir.BinaryGreaterEqual, types.Arithmetic, types.Bool},
	"==":  {ir.BinaryEqual, 0, types.Bool},
	"!=":  {ir.BinaryNotEqual, 0, types.Bool},
	"??":  {ir.BinaryNullCoalesce, 0, 0},
	"!!":  {ir.BinaryVoidCoalesce, 0, 0},
	"||":  {ir.BinaryLogicalOr, 0, 0},
	"&&":  {ir.BinaryLogicalAnd, 0, 0},
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// compileValueExpr dispatches an expression node to its deduced-type Module
// IR node (spec §4.6.4). A nil result means a diagnostic was logged.
func (c *Compiler) compileValueExpr(n *syntax.Node, ctx *ExprContext) *ir.Node {
	switch n.Kind {
	case syntax.ExprLiteral:
		return c.compileLiteral(n)
	case syntax.ExprVariable:
		return c.compileVariable(n, ctx)
	case syntax.ExprUnary:
		return c.compileUnary(n, ctx)
	case syntax.ExprBinary:
		return c.compileBinary(n, ctx)
	case syntax.ExprTernary:
		return c.compileTernary(n, ctx)
	case syntax.ExprCall:
		return c.compileCall(n, ctx)
	case syntax.ExprIndex:
		return c.compileIndex(n, ctx)
	case syntax.ExprProperty:
		return c.compileProperty(n, ctx)
	case syntax.ExprReference:
		return c.compileReference(n, ctx)
	case syntax.ExprDereference:
		return c.compileDereference(n, ctx)
	case syntax.ExprArray:
		return c.compileArray(n, ctx)
	case syntax.ExprObject:
		return c.compileObject(n, ctx)
	case syntax.ExprEon:
		return c.compileEon(n, ctx)
	case syntax.ExprGuard:
		return c.compileGuard(n, ctx)
	case syntax.ExprManifestation:
		return c.compileManifestation(n, ctx)
	case syntax.ExprNamedPair:
		return c.compileNamedPair(n, ctx)
	case syntax.ExprEllipsis:
		return c.compileEllipsis(n, ctx)
	case syntax.ExprMissing:
		node := ir.NewNode(ir.ExprLiteral, toIRRange(n.Range))
		node.Operand = ir.OperandInt
		node.IntOperand = 1
		node.Type = c.common.Bool
		return node
	default:
		c.errorf(toIRRange(n.Range), "not a value expression")
		return nil
	}
}

func (c *Compiler) compileLiteral(n *syntax.Node) *ir.Node {
	node := ir.NewNode(ir.ExprLiteral, toIRRange(n.Range))
	switch n.LiteralKind {
	case syntax.LiteralVoid:
		node.Type = c.common.Void
	case syntax.LiteralNull:
		node.Type = c.common.Null
	case syntax.LiteralBool:
		node.Operand = ir.OperandInt
		if n.BoolValue {
			node.IntOperand = 1
		}
		node.Type = c.common.Bool
	case syntax.LiteralInt:
		node.Operand = ir.OperandInt
		node.IntOperand = n.IntValue
		node.Type = c.common.Int
	case syntax.LiteralFloat:
		node.Operand = ir.OperandFloat
		node.FloatOperand = n.FloatValue
		node.Type = c.common.Float
	case syntax.LiteralString:
		node.Operand = ir.OperandString
		node.StringOperand = n.StringValue
		node.Type = c.common.String
	}
	return node
}

// compileVariable implements §4.6.4's "Variable" rule: a Type symbol is
// wrapped with typeVariableGet; everything else uses exprVariableGet.
func (c *Compiler) compileVariable(n *syntax.Node, ctx *ExprContext) *ir.Node {
	sym, ok := ctx.Lookup(n.Name)
	if !ok {
		c.errorf(toIRRange(n.Range), "undefined name %q", n.Name)
		return nil
	}
	kind := ir.ExprVariableGet
	if sym.Kind == SymbolType {
		kind = ir.ExprTypeVariableGet
	}
	node := ir.NewNode(kind, toIRRange(n.Range))
	node.Name = n.Name
	node.Type = sym.Type
	return node
}

func (c *Compiler) compileUnary(n *syntax.Node, ctx *ExprContext) *ir.Node {
	spec, ok := unaryOps[n.Operator]
	if !ok {
		c.errorf(toIRRange(n.Range), "unknown unary operator %q", n.Operator)
		return nil
	}
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed unary expression")
		return nil
	}
	rhs := c.compileValueExpr(n.Children[0], ctx)
	if rhs == nil {
		return nil
	}
	if !rhs.Type.Flags.HasAny(spec.required) {
		c.errorf(toIRRange(n.Range), "operator %q requires %s, got %s", n.Operator, spec.required, rhs.Type.Flags)
		return nil
	}
	node := ir.NewNode(ir.ExprUnary, toIRRange(n.Range), rhs)
	node.Operand = ir.OperandOperator
	node.IntOperand = int64(spec.op)
	if n.Operator == "!" {
		node.Type = c.common.Bool
	} else {
		node.Type = rhs.Type
	}
	return node
}

func (c *Compiler) compileBinary(n *syntax.Node, ctx *ExprContext) *ir.Node {
	spec, ok := binaryOps[n.Operator]
	if !ok {
		c.errorf(toIRRange(n.Range), "unknown binary operator %q", n.Operator)
		return nil
	}
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed binary expression")
		return nil
	}
	lhs := c.compileValueExpr(n.Children[0], ctx)
	rhs := c.compileValueExpr(n.Children[1], ctx)
	if lhs == nil || rhs == nil {
		return nil
	}
	if spec.required != 0 && (!lhs.Type.Flags.HasAny(spec.required) || !rhs.Type.Flags.HasAny(spec.required)) {
		c.errorf(toIRRange(n.Range), "operator %q requires %s on both sides, got %s and %s", n.Operator, spec.required, lhs.Type.Flags, rhs.Type.Flags)
		return nil
	}
	node := ir.NewNode(ir.ExprBinary, toIRRange(n.Range), lhs, rhs)
	node.Operand = ir.OperandOperator
	node.IntOperand = int64(spec.op)
	switch {
	case spec.result != 0:
		node.Type = c.forge.ForgePrimitive(spec.result)
	case spec.required == types.Arithmetic:
		if lhs.Type.Flags.HasAny(types.Float) || rhs.Type.Flags.HasAny(types.Float) {
			node.Type = c.common.Float
		} else {
			node.Type = c.common.Int
		}
	default:
		// == / != / short-circuit operators: the compiler defers full
		// checking to the runtime (spec §4.6.5).
		node.Type = c.forge.ForgeUnion(lhs.Type, rhs.Type)
	}
	return node
}

func (c *Compiler) compileTernary(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 3 {
		c.errorf(toIRRange(n.Range), "malformed ternary expression")
		return nil
	}
	cond := c.compileValueExpr(n.Children[0], ctx)
	a := c.compileValueExpr(n.Children[1], ctx)
	b := c.compileValueExpr(n.Children[2], ctx)
	if cond == nil || a == nil || b == nil {
		return nil
	}
	if !cond.Type.Flags.HasAny(types.Bool) {
		c.errorf(toIRRange(n.Range), "ternary condition must be bool, got %s", cond.Type.Flags)
		return nil
	}
	node := ir.NewNode(ir.ExprTernary, toIRRange(n.Range), cond, a, b)
	node.Type = c.forge.ForgeUnion(a.Type, b.Type)
	return node
}

// compileCall implements §4.6.4's Call rule, including the `assert(a op b)`
// predicate special case (spec §4.6.6).
func (c *Compiler) compileCall(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed call expression")
		return nil
	}
	calleeSyntax := n.Children[0]
	args := n.Children[1:]

	if calleeSyntax.Kind == syntax.ExprVariable && calleeSyntax.Name == "assert" && len(args) == 1 {
		callee := c.compileValueExpr(calleeSyntax, ctx)
		pred := c.compileValueExprPredicate(args[0], ctx)
		if callee == nil || pred == nil {
			return nil
		}
		node := ir.NewNode(ir.ExprCall, toIRRange(n.Range), callee, pred)
		node.Type = c.common.Void
		return node
	}

	callee := c.compileValueExpr(calleeSyntax, ctx)
	if callee == nil {
		return nil
	}
	children := make([]*ir.Node, 0, len(args)+1)
	children = append(children, callee)
	for _, a := range args {
		an := c.compileValueExpr(a, ctx)
		if an == nil {
			return nil
		}
		children = append(children, an)
	}
	node := ir.NewNode(ir.ExprCall, toIRRange(n.Range), children...)
	if sig, ok := types.SoleCallable(callee.Type); ok {
		if sig.YieldType != nil {
			// Calling a generator produces an iterator over its yielded
			// element type, not a value of its declared return type (spec
			// §4.7 "Generators", §8 scenario 4).
			node.Type = c.forge.ForgeIterableType(&types.Iterable{ElementType: sig.YieldType})
		} else {
			node.Type = sig.ReturnType
		}
	} else {
		c.errorf(toIRRange(n.Range), "callee is not callable")
		node.Type = c.common.AnyQ
	}
	return node
}

// compileValueExprPredicate wraps a comparison into exprValuePredicateOp so
// the runtime can report both operands on assertion failure (spec §4.6.6);
// any other expression compiles as an ordinary predicate value.
func (c *Compiler) compileValueExprPredicate(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if n.Kind == syntax.ExprBinary && isComparisonOp(n.Operator) {
		spec := binaryOps[n.Operator]
		if len(n.Children) != 2 {
			c.errorf(toIRRange(n.Range), "malformed predicate expression")
			return nil
		}
		lhs := c.compileValueExpr(n.Children[0], ctx)
		rhs := c.compileValueExpr(n.Children[1], ctx)
		if lhs == nil || rhs == nil {
			return nil
		}
		node := ir.NewNode(ir.ExprValuePredicateOp, toIRRange(n.Range), lhs, rhs)
		node.Operand = ir.OperandOperator
		node.IntOperand = int64(spec.op)
		node.Type = c.common.Bool
		return node
	}
	return c.compileValueExpr(n, ctx)
}

func (c *Compiler) compileIndex(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed index expression")
		return nil
	}
	a := c.compileValueExpr(n.Children[0], ctx)
	b := c.compileValueExpr(n.Children[1], ctx)
	if a == nil || b == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprIndex, toIRRange(n.Range), a, b)
	var result *types.Type
	types.ForeachIndexable(a.Type, func(idx *types.Indexable) bool {
		result = idx.ResultType
		return false
	})
	if result == nil {
		if a.Type.Flags.HasAny(types.String) {
			result = c.common.String
		} else {
			c.errorf(toIRRange(n.Range), "type %s is not indexable", a.Type)
			return nil
		}
	}
	node.Type = result
	return node
}

// compileProperty implements §4.6.4's Property rule: a type-symbol lhs is
// wrapped in a type manifestation and looked up against its metashape;
// otherwise the property is looked up against the value's own shapes.
func (c *Compiler) compileProperty(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed property expression")
		return nil
	}
	lhsSyntax := n.Children[0]
	if lhsSyntax.Kind == syntax.ExprVariable {
		if sym, ok := ctx.Lookup(lhsSyntax.Name); ok && sym.Kind == SymbolType {
			manifest := c.compileManifestationOf(sym.Type, lhsSyntax.Range)
			shape := c.forge.GetMetashape(sym.Type)
			node := ir.NewNode(ir.ExprPropertyGet, toIRRange(n.Range), manifest)
			node.Name = n.Name
			if shape == nil || shape.Dotable == nil {
				c.errorf(toIRRange(n.Range), "type %s has no static members", sym.Type)
				return nil
			}
			prop, ok := shape.Dotable.Get(n.Name)
			if !ok {
				c.errorf(toIRRange(n.Range), "type %s has no static member %q", sym.Type, n.Name)
				return nil
			}
			node.Type = prop.Type
			return node
		}
	}
	lhs := c.compileValueExpr(lhsSyntax, ctx)
	if lhs == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprPropertyGet, toIRRange(n.Range), lhs)
	node.Name = n.Name
	var result *types.Type
	types.ForeachDotable(lhs.Type, func(d *types.Dotable) bool {
		if p, ok := d.Get(n.Name); ok {
			result = p.Type
			return false
		}
		return true
	})
	if result == nil {
		c.errorf(toIRRange(n.Range), "type %s has no property %q", lhs.Type, n.Name)
		return nil
	}
	node.Type = result
	return node
}

func (c *Compiler) compileManifestationOf(t *types.Type, rng syntax.Range) *ir.Node {
	node := ir.NewNode(ir.ExprTypeManifestation, toIRRange(rng))
	node.Type = c.forge.ForgePrimitive(types.TypeKind)
	node.Manifests = t
	return node
}

// compileReference implements `&lvalue` (spec §4.6.4): only variable,
// index, and property forms are valid lvalues.
func (c *Compiler) compileReference(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed reference expression")
		return nil
	}
	target := n.Children[0]
	switch target.Kind {
	case syntax.ExprVariable, syntax.ExprIndex, syntax.ExprProperty:
	default:
		c.errorf(toIRRange(n.Range), "only variable, index, or property expressions can be referenced")
		return nil
	}
	inner := c.compileValueExpr(target, ctx)
	if inner == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprReference, toIRRange(n.Range), inner)
	node.Type = c.forge.ForgePointerType(&types.Pointable{
		PointeeType: inner.Type,
		Modifiable:  types.Read | types.Write | types.Mutate,
	})
	return node
}

func (c *Compiler) compileDereference(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed dereference expression")
		return nil
	}
	inner := c.compileValueExpr(n.Children[0], ctx)
	if inner == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprDereference, toIRRange(n.Range), inner)
	var pointee *types.Type
	types.ForeachPointable(inner.Type, func(p *types.Pointable) bool {
		pointee = p.PointeeType
		return false
	})
	if pointee == nil {
		c.errorf(toIRRange(n.Range), "type %s is not pointable", inner.Type)
		return nil
	}
	node.Type = pointee
	return node
}

// compileArray implements the array-literal hint rule of §4.6.4: when the
// enclosing context supplies an element-type hint, elements are checked
// against it; otherwise the element type is the union of deduced element
// types, or AnyQ if empty.
func (c *Compiler) compileArray(n *syntax.Node, ctx *ExprContext) *ir.Node {
	hint := ctx.ArrayHint()
	children := make([]*ir.Node, 0, len(n.Children))
	var elemType *types.Type
	for _, e := range n.Children {
		if hint != nil {
			ctx.SetArrayHint(nil)
		}
		en := c.compileValueExpr(e, ctx)
		if hint != nil {
			ctx.SetArrayHint(hint)
		}
		if en == nil {
			return nil
		}
		if hint != nil {
			if c.forge.IsTypeAssignable(hint, en.Type) == types.Never {
				c.errorf(toIRRange(e.Range), "element of type %s is not assignable to %s", en.Type, hint)
				return nil
			}
		} else if elemType == nil {
			elemType = en.Type
		} else {
			elemType = c.forge.ForgeUnion(elemType, en.Type)
		}
		children = append(children, en)
	}
	node := ir.NewNode(ir.ExprArray, toIRRange(n.Range), children...)
	elem := elemType
	switch {
	case hint != nil:
		elem = hint
	case elemType == nil:
		elem = c.common.AnyQ
	}
	// An array literal is both iterable (`for (x : a)`) and indexable
	// (`a[i]`) over the same element type, so both facets live on the one
	// shape rather than forging an iterable-only type.
	node.Type = c.forge.ForgeCompositeShape(&types.Shape{
		Iterable:  &types.Iterable{ElementType: elem},
		Indexable: &types.Indexable{ResultType: elem, IndexType: c.common.Int, Access: types.Get | types.Set | types.Mut},
	})
	return node
}

// compileObject implements `{ Type : name:value, ... }` object literals
// (spec §4.6.4). The first child is the object's type expression; the rest
// are ObjectSpecificationData/Function members.
func (c *Compiler) compileObject(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed object literal")
		return nil
	}
	objType := c.compileTypeExpr(n.Children[0], ctx)
	if objType == nil {
		return nil
	}
	children := make([]*ir.Node, 0, len(n.Children)-1)
	for _, m := range n.Children[1:] {
		switch m.Kind {
		case syntax.ObjectSpecificationData:
			if len(m.Children) != 1 {
				c.errorf(toIRRange(m.Range), "malformed object data member %q", m.Name)
				continue
			}
			v := c.compileValueExpr(m.Children[0], ctx)
			if v == nil {
				continue
			}
			member := ir.NewNode(ir.ExprNamedPair, toIRRange(m.Range), v)
			member.Name = m.Name
			children = append(children, member)
		case syntax.ObjectSpecificationFunction:
			fn := c.compileFunctionLiteral(m, ctx)
			if fn == nil {
				continue
			}
			member := ir.NewNode(ir.ExprNamedPair, toIRRange(m.Range), fn)
			member.Name = m.Name
			children = append(children, member)
		default:
			c.errorf(toIRRange(m.Range), "unexpected object literal member")
		}
	}
	node := ir.NewNode(ir.ExprObject, toIRRange(n.Range), children...)
	node.Type = objType
	return node
}

// compileEon implements anonymous eon literals: pairs only, no methods
// (spec §4.6.4, glossary "Eon").
func (c *Compiler) compileEon(n *syntax.Node, ctx *ExprContext) *ir.Node {
	children := make([]*ir.Node, 0, len(n.Children))
	props := make([]types.Property, 0, len(n.Children))
	for _, pair := range n.Children {
		v := c.compileNamedPair(pair, ctx)
		if v == nil {
			return nil
		}
		children = append(children, v)
		props = append(props, types.Property{Name: pair.Name, Type: v.Children[0].Type, Access: types.Get})
	}
	node := ir.NewNode(ir.ExprEon, toIRRange(n.Range), children...)
	node.Type = c.forge.ForgeObjectType(&types.Dotable{Properties: props, Unknown: types.Closed})
	return node
}

func (c *Compiler) compileNamedPair(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed named pair %q", n.Name)
		return nil
	}
	v := c.compileValueExpr(n.Children[0], ctx)
	if v == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprNamedPair, toIRRange(n.Range), v)
	node.Name = n.Name
	node.Type = v.Type
	return node
}

// compileGuard implements `T x = expr` guards (spec §4.6.4, glossary
// "Guard"): the result is "did the assignability hold", and the compiler
// warns when the outcome is statically known.
func (c *Compiler) compileGuard(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed guard expression")
		return nil
	}
	declared := c.compileTypeExpr(n.Children[0], ctx)
	value := c.compileValueExpr(n.Children[1], ctx)
	if declared == nil || value == nil {
		return nil
	}
	switch c.forge.IsTypeAssignable(declared, value.Type) {
	case types.Never:
		c.warnf(toIRRange(n.Range), "guard %q always fails: %s is never assignable to %s", n.Name, value.Type, declared)
	case types.Always:
		c.warnf(toIRRange(n.Range), "guard %q always succeeds: %s is always assignable to %s", n.Name, value.Type, declared)
	}
	node := ir.NewNode(ir.ExprGuard, toIRRange(n.Range), value)
	node.Name = n.Name
	node.Type = c.common.Bool
	// Manifests carries the guard's declared target type (distinct from
	// Type, which is the guard's own Bool result): the runtime needs it to
	// perform the "Sometimes" dynamic assignability check spec §3.3 requires
	// and to know what type to bind n.Name to when the guard passes.
	node.Manifests = declared
	return node
}

// compileManifestation evaluates a bare type keyword in expression position
// to a type value (spec §4.6.4, glossary "Manifestation").
func (c *Compiler) compileManifestation(n *syntax.Node, ctx *ExprContext) *ir.Node {
	sym, ok := ctx.Lookup(n.Name)
	if !ok || sym.Kind != SymbolType {
		c.errorf(toIRRange(n.Range), "unknown type %q", n.Name)
		return nil
	}
	return c.compileManifestationOf(sym.Type, n.Range)
}

func (c *Compiler) compileEllipsis(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed spread expression")
		return nil
	}
	inner := c.compileValueExpr(n.Children[0], ctx)
	if inner == nil {
		return nil
	}
	node := ir.NewNode(ir.ExprEllipsis, toIRRange(n.Range), inner)
	elem := c.forge.ForgeIterationType(inner.Type)
	if elem == nil {
		c.errorf(toIRRange(n.Range), "type %s is not iterable", inner.Type)
		return nil
	}
	node.Type = elem
	return node
}
