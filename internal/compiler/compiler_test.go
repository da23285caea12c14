package compiler

import (
	"testing"

	"egg/internal/diag"
	"egg/internal/syntax"
	"egg/internal/types"
)

func newTestCompiler() (*Compiler, *diag.Sink) {
	sink := diag.NewSink()
	return New(types.NewForge(), sink), sink
}

// print("Hello, world!"); — spec §8 scenario 1.
func TestCompilePrintCall(t *testing.T) {
	c, sink := newTestCompiler()
	call := syntax.New(syntax.ExprCall, syntax.Range{},
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "print"),
		syntax.NewStringLiteral(syntax.Range{}, "Hello, world!"))
	stmt := syntax.New(syntax.StmtExpression, syntax.Range{}, call)
	root := syntax.New(syntax.ModuleRoot, syntax.Range{}, stmt)

	mod := c.Compile("test.egg", root)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	if mod == nil {
		t.Fatalf("expected a compiled module")
	}
	if len(mod.Root.Children) != 1 {
		t.Fatalf("expected one root statement, got %d", len(mod.Root.Children))
	}
}

// int i = 0; while (i < 3) { print(i); i++; } — spec §8 scenario 2.
func TestCompileWhileLoop(t *testing.T) {
	c, sink := newTestCompiler()
	declareI := syntax.New(syntax.StmtDefineVariable, syntax.Range{},
		syntax.New(syntax.TypePrimitive, syntax.Range{}),
		syntax.NewIntLiteral(syntax.Range{}, 0))
	declareI.Name = "i"
	declareI.Children[0].Name = "int"

	cond := syntax.NewOp(syntax.ExprBinary, syntax.Range{}, "<",
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "i"),
		syntax.NewIntLiteral(syntax.Range{}, 3))

	printCall := syntax.New(syntax.ExprCall, syntax.Range{},
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "print"),
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "i"))
	printStmt := syntax.New(syntax.StmtExpression, syntax.Range{}, printCall)

	incr := syntax.NewOp(syntax.StmtMutate, syntax.Range{}, "++",
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "i"))

	body := syntax.New(syntax.StmtBlock, syntax.Range{}, printStmt, incr)
	whileStmt := syntax.New(syntax.StmtWhile, syntax.Range{}, cond, body)

	root := syntax.New(syntax.ModuleRoot, syntax.Range{}, declareI, whileStmt)

	mod := c.Compile("test.egg", root)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	if mod == nil {
		t.Fatalf("expected a compiled module")
	}
}

// int f(int x) { return x * x; } print(f(5)); — spec §8 scenario 3.
func TestCompileFunctionDefineAndCall(t *testing.T) {
	c, sink := newTestCompiler()
	intType := syntax.New(syntax.TypePrimitive, syntax.Range{})
	intType.Name = "int"
	intTypeForParam := syntax.New(syntax.TypePrimitive, syntax.Range{})
	intTypeForParam.Name = "int"

	param := syntax.New(syntax.TypeFunctionSignatureParameter, syntax.Range{}, intTypeForParam)
	param.Name = "x"
	param.ParamFlag = syntax.ParamRequired

	sig := syntax.New(syntax.TypeFunctionSignature, syntax.Range{}, intType, param)

	ret := syntax.New(syntax.StmtReturn, syntax.Range{},
		syntax.NewOp(syntax.ExprBinary, syntax.Range{}, "*",
			syntax.NewName(syntax.ExprVariable, syntax.Range{}, "x"),
			syntax.NewName(syntax.ExprVariable, syntax.Range{}, "x")))
	body := syntax.New(syntax.StmtBlock, syntax.Range{}, ret)

	defineF := syntax.New(syntax.StmtDefineFunction, syntax.Range{}, sig, body)
	defineF.Name = "f"

	call := syntax.New(syntax.ExprCall, syntax.Range{},
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "print"),
		syntax.New(syntax.ExprCall, syntax.Range{},
			syntax.NewName(syntax.ExprVariable, syntax.Range{}, "f"),
			syntax.NewIntLiteral(syntax.Range{}, 5)))
	callStmt := syntax.New(syntax.StmtExpression, syntax.Range{}, call)

	root := syntax.New(syntax.ModuleRoot, syntax.Range{}, defineF, callStmt)

	mod := c.Compile("test.egg", root)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	if mod == nil {
		t.Fatalf("expected a compiled module")
	}
}

// assert(2 + 2 == 5); — spec §8 scenario 6, predicate lowering.
func TestCompileAssertPredicate(t *testing.T) {
	c, sink := newTestCompiler()
	cmp := syntax.NewOp(syntax.ExprBinary, syntax.Range{}, "==",
		syntax.NewOp(syntax.ExprBinary, syntax.Range{}, "+",
			syntax.NewIntLiteral(syntax.Range{}, 2),
			syntax.NewIntLiteral(syntax.Range{}, 2)),
		syntax.NewIntLiteral(syntax.Range{}, 5))
	call := syntax.New(syntax.ExprCall, syntax.Range{},
		syntax.NewName(syntax.ExprVariable, syntax.Range{}, "assert"),
		cmp)
	stmt := syntax.New(syntax.StmtExpression, syntax.Range{}, call)
	root := syntax.New(syntax.ModuleRoot, syntax.Range{}, stmt)

	mod := c.Compile("test.egg", root)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Records())
	}
	predicateNode := mod.Root.Children[0].Children[0].Children[1]
	if len(predicateNode.Children) != 2 {
		t.Fatalf("expected a predicate node with two operand children")
	}
}

func TestCompileUndefinedNameErrors(t *testing.T) {
	c, sink := newTestCompiler()
	stmt := syntax.New(syntax.StmtExpression, syntax.Range{},
		syntax.New(syntax.ExprCall, syntax.Range{},
			syntax.NewName(syntax.ExprVariable, syntax.Range{}, "nope")))
	root := syntax.New(syntax.ModuleRoot, syntax.Range{}, stmt)

	mod := c.Compile("test.egg", root)
	if mod != nil {
		t.Fatalf("expected compilation to fail")
	}
	if !sink.HasErrors() {
		t.Fatalf("expected an error to be logged")
	}
}
