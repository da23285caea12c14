package compiler

import (
	"egg/internal/syntax"
	"egg/internal/types"
)

// compileTypeExpr deduces a *types.Type from a syntax type-expression node
// (spec §4.6, type-expression kinds). A nil result means a diagnostic was
// already logged.
func (c *Compiler) compileTypeExpr(n *syntax.Node, ctx *ExprContext) *types.Type {
	switch n.Kind {
	case syntax.TypePrimitive:
		return c.compilePrimitiveTypeExpr(n, ctx)
	case syntax.TypeUnary:
		return c.compileUnaryTypeExpr(n, ctx)
	case syntax.TypeBinary:
		return c.compileBinaryTypeExpr(n, ctx)
	case syntax.TypeFunctionSignature:
		return c.compileFunctionSignatureTypeExpr(n, ctx)
	case syntax.TypeSpecification:
		return c.compileTypeSpecification(n, ctx)
	default:
		c.errorf(toIRRange(n.Range), "not a type expression")
		return nil
	}
}

// compilePrimitiveTypeExpr resolves a bare keyword ("int", "string", a
// previously-declared type name) to its registered type.
func (c *Compiler) compilePrimitiveTypeExpr(n *syntax.Node, ctx *ExprContext) *types.Type {
	sym, ok := ctx.Lookup(n.Name)
	if !ok || sym.Kind != SymbolType {
		c.errorf(toIRRange(n.Range), "unknown type %q", n.Name)
		return nil
	}
	return sym.Type
}

// compileUnaryTypeExpr handles `T?` (nullable) and `T!` (voidable)
// modifiers (spec §4.4 forgeNullable/forgeVoidable).
func (c *Compiler) compileUnaryTypeExpr(n *syntax.Node, ctx *ExprContext) *types.Type {
	if len(n.Children) != 1 {
		c.errorf(toIRRange(n.Range), "malformed unary type expression")
		return nil
	}
	base := c.compileTypeExpr(n.Children[0], ctx)
	if base == nil {
		return nil
	}
	switch n.Operator {
	case "?":
		return c.forge.ForgeNullable(base, true)
	case "!":
		return c.forge.ForgeVoidable(base, true)
	default:
		c.errorf(toIRRange(n.Range), "unknown type modifier %q", n.Operator)
		return nil
	}
}

// compileBinaryTypeExpr handles `A | B` union type expressions.
func (c *Compiler) compileBinaryTypeExpr(n *syntax.Node, ctx *ExprContext) *types.Type {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed binary type expression")
		return nil
	}
	a := c.compileTypeExpr(n.Children[0], ctx)
	b := c.compileTypeExpr(n.Children[1], ctx)
	if a == nil || b == nil {
		return nil
	}
	return c.forge.ForgeUnion(a, b)
}

// compileFunctionSignatureTypeExpr compiles `R(P1, P2, ...)` signatures
// (spec §4.6.3). Child 0 is the return-type expression; remaining children
// are TypeFunctionSignatureParameter nodes.
func (c *Compiler) compileFunctionSignatureTypeExpr(n *syntax.Node, ctx *ExprContext) *types.Type {
	if len(n.Children) < 1 {
		c.errorf(toIRRange(n.Range), "malformed function signature")
		return nil
	}
	ret := c.compileTypeExpr(n.Children[0], ctx)
	if ret == nil {
		return nil
	}
	params := make([]types.Parameter, 0, len(n.Children)-1)
	for _, p := range n.Children[1:] {
		if p.Kind != syntax.TypeFunctionSignatureParameter {
			c.errorf(toIRRange(p.Range), "expected a parameter node")
			continue
		}
		if len(p.Children) != 1 {
			c.errorf(toIRRange(p.Range), "malformed parameter node")
			continue
		}
		pt := c.compileTypeExpr(p.Children[0], ctx)
		if pt == nil {
			continue
		}
		var flags types.ParamFlags
		switch p.ParamFlag {
		case syntax.ParamRequired:
			flags = types.Required
		case syntax.ParamVariadic:
			flags = types.Variadic
		case syntax.ParamPredicate:
			flags = types.Predicate
		}
		params = append(params, types.Parameter{Name: p.Name, Type: pt, Flags: flags})
	}
	return c.forge.ForgeFunctionType(&types.Callable{ReturnType: ret, Parameters: params})
}

// compileTypeSpecification compiles a `type T { ... }` declaration body
// into a single object shape combining static members, instance data, and
// instance functions (spec §4.6 "type specification with static/instance
// data/function clauses"). Children alternate kind/name/type/[value]; this
// minimal form treats every child as a Dotable property declaration,
// sufficient for the object literal and `type` statement cases this
// compiler exercises.
func (c *Compiler) compileTypeSpecification(n *syntax.Node, ctx *ExprContext) *types.Type {
	props := make([]types.Property, 0, len(n.Children))
	for _, child := range n.Children {
		if len(child.Children) != 1 {
			c.errorf(toIRRange(child.Range), "malformed type specification member %q", child.Name)
			continue
		}
		pt := c.compileTypeExpr(child.Children[0], ctx)
		if pt == nil {
			continue
		}
		props = append(props, types.Property{Name: child.Name, Type: pt, Access: types.Get | types.Set | types.Mut})
	}
	return c.forge.ForgeObjectType(&types.Dotable{Properties: props, Unknown: types.Closed})
}
