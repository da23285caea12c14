// Package compiler implements the Module-IR compiler (spec component H):
// it walks a syntax.Node tree, maintains the nested expression/statement
// context chain of spec §3.4, consults the type forge for every
// assignability/mutatability/shape question, and emits ir.Node trees while
// reporting diagnostics through a diag.Sink. Grounded on the
// visitor-dispatch idiom of teacher:internal/compiler/compiler.go and
// teacher:internal/compiler/stmt_compiler.go, adapted from bytecode emission
// to direct Module IR construction (spec §1: bytecode is out of scope).
package compiler

import (
	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/syntax"
	"egg/internal/types"
)

// Compiler holds the services every compile method needs: the type forge,
// the diagnostics sink, and the well-known primitive types.
type Compiler struct {
	forge  *types.Forge
	common types.Common
	sink   *diag.Sink
}

// New creates a compiler over forge, logging diagnostics to sink.
func New(forge *types.Forge, sink *diag.Sink) *Compiler {
	return &Compiler{forge: forge, common: forge.Common(), sink: sink}
}

// Compile implements §4.6.1's compile(root, rootCtx): it requires a
// ModuleRoot node, compiles its statement list into a root block, and
// returns nil if any error was logged.
func (c *Compiler) Compile(resource string, root *syntax.Node) *ir.Module {
	if root.Kind != syntax.ModuleRoot {
		c.errorf(toIRRange(root.Range), "expected a module root node")
		return nil
	}
	rootExpr := newCaptureFrame(nil)
	c.registerBuiltins(rootExpr)
	rootStmt := newStmtContext(rootExpr, nil)

	block := c.compileBlock(resource, root.Children, rootStmt)
	if c.sink.HasErrors() {
		return nil
	}
	return &ir.Module{Resource: resource, Root: block}
}

// registerBuiltins seeds the symbols the Program API installs before
// compilation (spec §6: "registers built-in symbols (assert, print, and
// primitive-type handles)").
func (c *Compiler) registerBuiltins(ctx *ExprContext) {
	assertSig := c.forge.ForgeFunctionType(&types.Callable{
		ReturnType: c.common.Void,
		Parameters: []types.Parameter{
			{Name: "predicate", Type: c.common.Any, Flags: types.Required},
		},
	})
	ctx.Declare(&Symbol{Name: "assert", Kind: SymbolBuiltin, Type: assertSig})

	printSig := c.forge.ForgeFunctionType(&types.Callable{
		ReturnType: c.common.Void,
		Parameters: []types.Parameter{
			{Name: "values", Type: c.common.AnyQ, Flags: types.Variadic},
		},
	})
	ctx.Declare(&Symbol{Name: "print", Kind: SymbolBuiltin, Type: printSig})

	for name, t := range map[string]*types.Type{
		"void": c.common.Void, "bool": c.common.Bool, "int": c.common.Int,
		"float": c.common.Float, "string": c.common.String, "object": c.common.Object,
	} {
		ctx.Declare(&Symbol{Name: name, Kind: SymbolType, Type: t})
	}
}

func (c *Compiler) errorf(rng ir.Range, format string, args ...interface{}) {
	c.sink.Logf(diag.SourceCompiler, diag.Error, rng, format, args...)
}

func (c *Compiler) warnf(rng ir.Range, format string, args ...interface{}) {
	c.sink.Logf(diag.SourceCompiler, diag.Warning, rng, format, args...)
}

func toIRRange(r syntax.Range) ir.Range {
	return ir.Range{File: r.File, StartLine: r.StartLine, StartColumn: r.StartColumn, EndLine: r.EndLine, EndColumn: r.EndColumn}
}

// compileBlock compiles a statement list into a StmtBlock node, always
// opening a fresh lexical scope under parent.
func (c *Compiler) compileBlock(resource string, stmts []*syntax.Node, parent *StmtContext) *ir.Node {
	inner := newStmtContext(newExprContext(parent.ExprContext), parent)
	children := make([]*ir.Node, 0, len(stmts))
	for _, s := range stmts {
		if n := c.compileStmt(resource, s, inner); n != nil {
			children = append(children, n)
		}
	}
	return ir.NewNode(ir.StmtBlock, ir.Range{File: resource}, children...)
}
