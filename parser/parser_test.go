package parser

import (
	"strings"
	"testing"

	"github.com/example/golox/ast"
	"github.com/example/golox/lexer"
	"github.com/example/golox/token"
)

func parseProgram(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	l := lexer.New(source)
	p := New(l.Scan())
	program := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs)
	}
	return program
}

func parseErrors(t *testing.T, source string) []error {
	t.Helper()
	l := lexer.New(source)
	p := New(l.Scan())
	p.Parse()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for %q but got none", source)
	}
	return errs
}

func TestExpressionStatement(t *testing.T) {
	program := parseProgram(t, "1 + 2;")
	if len(program) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program))
	}
	stmt, ok := program[0].(*ast.Expression)
	if !ok {
		t.Fatalf("expected *ast.Expression, got %T", program[0])
	}
	bin, ok := stmt.Expression.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary, got %T", stmt.Expression)
	}
	if bin.Operator.Type != token.Plus {
		t.Errorf("operator=%v, want Plus", bin.Operator.Type)
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	program := parseProgram(t, "1 + 2 * 3;")
	bin := program[0].(*ast.Expression).Expression.(*ast.Binary)
	if bin.Operator.Type != token.Plus {
		t.Fatalf("root operator=%v, want Plus", bin.Operator.Type)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Operator.Type != token.Star {
		t.Errorf("right child should be the Star node, got %T", bin.Right)
	}
}

func TestConcatAtTermPrecedence(t *testing.T) {
	// a ++ b ++ c is left-associative at the same level as +.
	program := parseProgram(t, `a ++ b ++ c;`)
	outer := program[0].(*ast.Expression).Expression.(*ast.Binary)
	if outer.Operator.Type != token.PlusPlus {
		t.Fatalf("root operator=%v, want PlusPlus", outer.Operator.Type)
	}
	inner, ok := outer.Left.(*ast.Binary)
	if !ok || inner.Operator.Type != token.PlusPlus {
		t.Errorf("left child should be the inner PlusPlus node, got %T", outer.Left)
	}
}

func TestUnaryRightAssociative(t *testing.T) {
	program := parseProgram(t, "!!x;")
	outer := program[0].(*ast.Expression).Expression.(*ast.Unary)
	if _, ok := outer.Right.(*ast.Unary); !ok {
		t.Errorf("expected nested Unary, got %T", outer.Right)
	}
}

func TestVarDefaultInitializer(t *testing.T) {
	program := parseProgram(t, "var a;")
	v := program[0].(*ast.Var)
	lit, ok := v.Initializer.(*ast.Literal)
	if !ok || lit.Value != nil {
		t.Errorf("expected nil Literal initializer, got %#v", v.Initializer)
	}
}

func TestAssignment(t *testing.T) {
	program := parseProgram(t, "a = b = 1;")
	outer := program[0].(*ast.Expression).Expression.(*ast.Assign)
	if outer.Name.Lexeme != "a" {
		t.Errorf("outer target=%q, want a", outer.Name.Lexeme)
	}
	inner, ok := outer.Value.(*ast.Assign)
	if !ok || inner.Name.Lexeme != "b" {
		t.Errorf("expected right-nested Assign to b, got %#v", outer.Value)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	errs := parseErrors(t, "1 = 2;")
	if !strings.Contains(errs[0].Error(), "Invalid assignment target.") {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestPropertyAssignment(t *testing.T) {
	program := parseProgram(t, "o.f = 1;")
	set, ok := program[0].(*ast.Expression).Expression.(*ast.Set)
	if !ok {
		t.Fatalf("expected *ast.Set, got %T", program[0].(*ast.Expression).Expression)
	}
	if set.Name.Lexeme != "f" {
		t.Errorf("property=%q, want f", set.Name.Lexeme)
	}
}

func TestIfSuppliesEmptyElse(t *testing.T) {
	program := parseProgram(t, "if (x) print 1;")
	s := program[0].(*ast.If)
	elseBlock, ok := s.Else.(*ast.Block)
	if !ok || len(elseBlock.Statements) != 0 {
		t.Errorf("expected empty Block else, got %#v", s.Else)
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	program := parseProgram(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	outer, ok := program[0].(*ast.Block)
	if !ok || len(outer.Statements) != 2 {
		t.Fatalf("expected Block[init, while], got %#v", program[0])
	}
	if _, ok := outer.Statements[0].(*ast.Var); !ok {
		t.Errorf("expected Var initializer first, got %T", outer.Statements[0])
	}
	loop, ok := outer.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("expected While second, got %T", outer.Statements[1])
	}
	body, ok := loop.Body.(*ast.Block)
	if !ok || len(body.Statements) != 2 {
		t.Fatalf("expected Block[body, increment], got %#v", loop.Body)
	}
	if _, ok := body.Statements[1].(*ast.Expression); !ok {
		t.Errorf("expected increment as Expression, got %T", body.Statements[1])
	}
}

func TestForWithAllClausesEmpty(t *testing.T) {
	program := parseProgram(t, "for (;;) print 1;")
	outer, ok := program[0].(*ast.Block)
	if !ok || len(outer.Statements) != 2 {
		t.Fatalf("expected Block[empty init, while], got %#v", program[0])
	}
	empty, ok := outer.Statements[0].(*ast.Block)
	if !ok || len(empty.Statements) != 0 {
		t.Errorf("expected empty Block initializer, got %#v", outer.Statements[0])
	}
	loop, ok := outer.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("expected While, got %T", outer.Statements[1])
	}
	cond, ok := loop.Condition.(*ast.Literal)
	if !ok || cond.Value != true {
		t.Errorf("expected Literal(true) condition, got %#v", loop.Condition)
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parseProgram(t, "fun add(a, b) { return a + b; }")
	fn := program[0].(*ast.Function)
	if fn.Name.Lexeme != "add" {
		t.Errorf("name=%q, want add", fn.Name.Lexeme)
	}
	if len(fn.Params) != 2 {
		t.Errorf("params=%d, want 2", len(fn.Params))
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return in body, got %T", fn.Body[0])
	}
	if ret.Empty {
		t.Errorf("return with value flagged Empty")
	}
}

func TestBareReturn(t *testing.T) {
	program := parseProgram(t, "fun f() { return; }")
	fn := program[0].(*ast.Function)
	ret := fn.Body[0].(*ast.Return)
	if !ret.Empty {
		t.Errorf("bare return not flagged Empty")
	}
	lit, ok := ret.Value.(*ast.Literal)
	if !ok || lit.Value != nil {
		t.Errorf("expected nil Literal value, got %#v", ret.Value)
	}
}

func TestClassImplicitSuperclass(t *testing.T) {
	program := parseProgram(t, "class A { m() { return 1; } }")
	c := program[0].(*ast.Class)
	if c.HasSuperclass {
		t.Errorf("class without '<' flagged HasSuperclass")
	}
	if c.Superclass == nil || c.Superclass.Name.Lexeme != "Object" {
		t.Errorf("expected implicit Object superclass, got %#v", c.Superclass)
	}
	if len(c.Methods) != 1 || c.Methods[0].Name.Lexeme != "m" {
		t.Errorf("methods wrong: %#v", c.Methods)
	}
}

func TestClassExplicitSuperclass(t *testing.T) {
	program := parseProgram(t, "class B < A {}")
	c := program[0].(*ast.Class)
	if !c.HasSuperclass {
		t.Errorf("class with '<' not flagged HasSuperclass")
	}
	if c.Superclass.Name.Lexeme != "A" {
		t.Errorf("superclass=%q, want A", c.Superclass.Name.Lexeme)
	}
}

func TestCallChain(t *testing.T) {
	program := parseProgram(t, "a.b(1).c;")
	get, ok := program[0].(*ast.Expression).Expression.(*ast.Get)
	if !ok {
		t.Fatalf("expected outer Get, got %T", program[0].(*ast.Expression).Expression)
	}
	call, ok := get.Object.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call under Get, got %T", get.Object)
	}
	if len(call.Arguments) != 1 {
		t.Errorf("arguments=%d, want 1", len(call.Arguments))
	}
}

func TestSuperRequiresMethod(t *testing.T) {
	errs := parseErrors(t, "class B < A { m() { super; } }")
	if !strings.Contains(errs[0].Error(), "Expect '.' after 'super'.") {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestErrorAtEnd(t *testing.T) {
	errs := parseErrors(t, "print 1")
	if !strings.Contains(errs[0].Error(), "Error at end") {
		t.Errorf("unexpected error: %v", errs[0])
	}
}

func TestSynchronizeReportsMultipleErrors(t *testing.T) {
	errs := parseErrors(t, "var = 1;\nvar = 2;")
	if len(errs) < 2 {
		t.Errorf("expected recovery to surface both errors, got %d: %v", len(errs), errs)
	}
}

func TestParseExpression(t *testing.T) {
	l := lexer.New("1 + 2")
	p := New(l.Scan())
	expr := p.ParseExpression()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := expr.(*ast.Binary); !ok {
		t.Errorf("expected *ast.Binary, got %T", expr)
	}
}

func TestParseExpressionRejectsTrailingInput(t *testing.T) {
	l := lexer.New("1 + 2;")
	p := New(l.Scan())
	p.ParseExpression()
	errs := p.Errors()
	if len(errs) == 0 || !strings.Contains(errs[0].Error(), "Expect end of expression.") {
		t.Errorf("expected trailing-input error, got %v", errs)
	}
}
