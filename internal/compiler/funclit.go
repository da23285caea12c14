package compiler

import (
	"egg/internal/ir"
	"egg/internal/syntax"
	"egg/internal/types"
)

// compileFunctionLiteral compiles an ObjectSpecificationFunction member
// (spec §4.6.4 "Object literal... Functions compile like nested function
// definitions (with their own capture set)"). Children: [0] signature,
// [1] body block.
func (c *Compiler) compileFunctionLiteral(n *syntax.Node, ctx *ExprContext) *ir.Node {
	if len(n.Children) != 2 {
		c.errorf(toIRRange(n.Range), "malformed function literal %q", n.Name)
		return nil
	}
	sigNode, bodyNode := n.Children[0], n.Children[1]
	sig := c.compileFunctionSignatureTypeExpr(sigNode, ctx)
	if sig == nil {
		return nil
	}
	callable, _ := types.SoleCallable(sig)

	inner := newCaptureFrame(ctx)
	for _, p := range callable.Parameters {
		if p.Name == "" {
			continue
		}
		inner.Declare(&Symbol{Name: p.Name, Kind: SymbolParameter, Type: p.Type, Range: toIRRange(n.Range)})
	}
	innerStmt := newStmtContext(inner, nil)
	innerStmt.canReturn = &ReturnInfo{Type: callable.ReturnType}
	yieldElem := c.forge.ForgeIterationType(callable.ReturnType)
	if yieldElem == nil {
		yieldElem = callable.ReturnType
	}
	innerStmt.canYield = &ReturnInfo{Type: yieldElem}

	body := c.compileBlock(n.Range.File, bodyNode.Children, innerStmt)
	if innerStmt.canYield.Count > 0 {
		body = ir.NewNode(ir.StmtGeneratorInvoke, toIRRange(n.Range), body)
		sig = c.forge.ForgeFunctionType(&types.Callable{
			ReturnType: callable.ReturnType,
			Parameters: callable.Parameters,
			YieldType:  yieldElem,
		})
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
	return fnValue
}
