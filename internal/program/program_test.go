package program

import (
	"context"
	"strings"
	"testing"

	"egg/internal/diag"
	"egg/internal/syntax"
	"egg/internal/types"
)

func rng() syntax.Range { return syntax.Range{} }

func userMessages(records []diag.Record) []string {
	var out []string
	for _, r := range records {
		if r.Source == diag.SourceUser {
			out = append(out, r.Message)
		}
	}
	return out
}

func compileAndRun(t *testing.T, p *Program, root *syntax.Node) {
	t.Helper()
	module, err := p.Compile("test.egg", root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := p.Run(context.Background(), module); err != nil {
		t.Fatalf("run: %v", err)
	}
}

// print("Hello, world!"); — spec §8 scenario 1.
func TestScenarioHelloWorld(t *testing.T) {
	p := New()
	call := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewStringLiteral(rng(), "Hello, world!"))
	root := syntax.New(syntax.ModuleRoot, rng(), syntax.New(syntax.StmtExpression, rng(), call))

	compileAndRun(t, p, root)
	if p.ExitCode() != 0 {
		t.Fatalf("expected exit code 0, got %d", p.ExitCode())
	}
	got := userMessages(p.Diagnostics())
	if len(got) != 1 || got[0] != "Hello, world!" {
		t.Fatalf("got messages %v", got)
	}
}

// int i = 0; while (i < 3) { print(i); i++; } — spec §8 scenario 2.
func TestScenarioWhileLoop(t *testing.T) {
	p := New()
	intType := syntax.New(syntax.TypePrimitive, rng())
	intType.Name = "int"
	declareI := syntax.New(syntax.StmtDefineVariable, rng(), intType, syntax.NewIntLiteral(rng(), 0))
	declareI.Name = "i"

	cond := syntax.NewOp(syntax.ExprBinary, rng(), "<",
		syntax.NewName(syntax.ExprVariable, rng(), "i"), syntax.NewIntLiteral(rng(), 3))
	printCall := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewName(syntax.ExprVariable, rng(), "i"))
	printStmt := syntax.New(syntax.StmtExpression, rng(), printCall)
	incr := syntax.NewOp(syntax.StmtMutate, rng(), "++", syntax.NewName(syntax.ExprVariable, rng(), "i"))
	body := syntax.New(syntax.StmtBlock, rng(), printStmt, incr)
	whileStmt := syntax.New(syntax.StmtWhile, rng(), cond, body)

	root := syntax.New(syntax.ModuleRoot, rng(), declareI, whileStmt)
	compileAndRun(t, p, root)

	got := userMessages(p.Diagnostics())
	want := []string{"0", "1", "2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// int f(int x) { return x * x; } print(f(5)); — spec §8 scenario 3.
func TestScenarioFunctionCall(t *testing.T) {
	p := New()
	intRet := syntax.New(syntax.TypePrimitive, rng())
	intRet.Name = "int"
	intParam := syntax.New(syntax.TypePrimitive, rng())
	intParam.Name = "int"
	param := syntax.New(syntax.TypeFunctionSignatureParameter, rng(), intParam)
	param.Name = "x"
	param.ParamFlag = syntax.ParamRequired
	sig := syntax.New(syntax.TypeFunctionSignature, rng(), intRet, param)

	ret := syntax.New(syntax.StmtReturn, rng(),
		syntax.NewOp(syntax.ExprBinary, rng(), "*",
			syntax.NewName(syntax.ExprVariable, rng(), "x"),
			syntax.NewName(syntax.ExprVariable, rng(), "x")))
	body := syntax.New(syntax.StmtBlock, rng(), ret)
	defineF := syntax.New(syntax.StmtDefineFunction, rng(), sig, body)
	defineF.Name = "f"

	call := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.New(syntax.ExprCall, rng(), syntax.NewName(syntax.ExprVariable, rng(), "f"), syntax.NewIntLiteral(rng(), 5)))
	callStmt := syntax.New(syntax.StmtExpression, rng(), call)

	root := syntax.New(syntax.ModuleRoot, rng(), defineF, callStmt)
	compileAndRun(t, p, root)

	got := userMessages(p.Diagnostics())
	if len(got) != 1 || got[0] != "25" {
		t.Fatalf("got %v, want [25]", got)
	}
}

// int f() { yield 1; yield 2; } for (int v : f()) print(v); — spec §8 scenario 4.
func TestScenarioGeneratorForEach(t *testing.T) {
	p := New()
	intRet := syntax.New(syntax.TypePrimitive, rng())
	intRet.Name = "int"
	sig := syntax.New(syntax.TypeFunctionSignature, rng(), intRet)

	yield1 := syntax.New(syntax.StmtYield, rng(), syntax.NewIntLiteral(rng(), 1))
	yield2 := syntax.New(syntax.StmtYield, rng(), syntax.NewIntLiteral(rng(), 2))
	body := syntax.New(syntax.StmtBlock, rng(), yield1, yield2)
	defineF := syntax.New(syntax.StmtDefineFunction, rng(), sig, body)
	defineF.Name = "f"

	iterCall := syntax.New(syntax.ExprCall, rng(), syntax.NewName(syntax.ExprVariable, rng(), "f"))
	printCall := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewName(syntax.ExprVariable, rng(), "v"))
	forBody := syntax.New(syntax.StmtBlock, rng(), syntax.New(syntax.StmtExpression, rng(), printCall))
	forEach := syntax.New(syntax.StmtForEach, rng(), iterCall, forBody)
	forEach.Name = "v"

	root := syntax.New(syntax.ModuleRoot, rng(), defineF, forEach)
	compileAndRun(t, p, root)

	got := userMessages(p.Diagnostics())
	want := []string{"1", "2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// try { throw "bad"; } catch (string s) { print(s); } finally { print("done"); } — spec §8 scenario 5.
func TestScenarioTryCatchFinally(t *testing.T) {
	p := New()
	throwStmt := syntax.New(syntax.StmtThrow, rng(), syntax.NewStringLiteral(rng(), "bad"))
	tryBody := syntax.New(syntax.StmtBlock, rng(), throwStmt)

	stringType := syntax.New(syntax.TypePrimitive, rng())
	stringType.Name = "string"
	catchPrint := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewName(syntax.ExprVariable, rng(), "s"))
	catchBody := syntax.New(syntax.StmtBlock, rng(), syntax.New(syntax.StmtExpression, rng(), catchPrint))
	catch := syntax.New(syntax.StmtCatch, rng(), stringType, catchBody)
	catch.Name = "s"

	finallyPrint := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewStringLiteral(rng(), "done"))
	finally := syntax.New(syntax.StmtFinally, rng(), syntax.New(syntax.StmtExpression, rng(), finallyPrint))

	tryStmt := syntax.New(syntax.StmtTry, rng(), tryBody, catch, finally)
	root := syntax.New(syntax.ModuleRoot, rng(), tryStmt)
	compileAndRun(t, p, root)

	got := userMessages(p.Diagnostics())
	want := []string{"bad", "done"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// assert(2 + 2 == 5); — spec §8 scenario 6: throws with a left=/right= message.
func TestScenarioAssertFailureMessage(t *testing.T) {
	p := New()
	cmp := syntax.NewOp(syntax.ExprBinary, rng(), "==",
		syntax.NewOp(syntax.ExprBinary, rng(), "+", syntax.NewIntLiteral(rng(), 2), syntax.NewIntLiteral(rng(), 2)),
		syntax.NewIntLiteral(rng(), 5))
	call := syntax.New(syntax.ExprCall, rng(), syntax.NewName(syntax.ExprVariable, rng(), "assert"), cmp)
	root := syntax.New(syntax.ModuleRoot, rng(), syntax.New(syntax.StmtExpression, rng(), call))

	module, err := p.Compile("test.egg", root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	result, err := p.Run(context.Background(), module)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Is(types.Throw) {
		t.Fatalf("expected an uncaught Throw result")
	}
	inner := result.Inner()
	if inner == nil {
		t.Fatalf("expected a wrapped exception value")
	}
	s, ok := inner.String()
	if !ok {
		t.Fatalf("expected the thrown value to be a string")
	}
	msg := s.Go()
	if !strings.Contains(msg, "left=4") || !strings.Contains(msg, "right=5") {
		t.Fatalf("assertion message %q missing left=4/right=5", msg)
	}
}

// RunConcurrent runs independent programs on independent goroutines (spec §5).
func TestRunConcurrentIsolatesPrograms(t *testing.T) {
	specs := make([]RunSpec, 3)
	for i := range specs {
		call := syntax.New(syntax.ExprCall, rng(),
			syntax.NewName(syntax.ExprVariable, rng(), "print"),
			syntax.NewIntLiteral(rng(), int64(i)))
		root := syntax.New(syntax.ModuleRoot, rng(), syntax.New(syntax.StmtExpression, rng(), call))
		specs[i] = RunSpec{Program: New(), Resource: "concurrent.egg", Root: root}
	}

	results, err := RunConcurrent(context.Background(), specs)
	if err != nil {
		t.Fatalf("RunConcurrent: %v", err)
	}
	for i, r := range results {
		got := userMessages(r.Diagnostics)
		if len(got) != 1 {
			t.Fatalf("spec %d: got %v", i, got)
		}
	}
}

// Basket teardown property (spec §8 testable property 1): once the embedder
// releases its hold on the result, Collect then Purge both report nothing
// left to do.
func TestBasketTeardownAfterRelease(t *testing.T) {
	p := New()
	call := syntax.New(syntax.ExprCall, rng(),
		syntax.NewName(syntax.ExprVariable, rng(), "print"),
		syntax.NewStringLiteral(rng(), "x"))
	root := syntax.New(syntax.ModuleRoot, rng(), syntax.New(syntax.StmtExpression, rng(), call))

	module, err := p.Compile("test.egg", root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	result, err := p.Run(context.Background(), module)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	p.ReleaseResult(result)
	collected := p.Basket().Collect()
	purged := p.Basket().Purge()
	_ = collected
	if purged != 0 {
		t.Fatalf("expected nothing left to purge after release+collect, got %d", purged)
	}
}
