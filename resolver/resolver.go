package resolver

import (
	"fmt"

	"github.com/example/golox/ast"
	"github.com/example/golox/token"
)

// Depths receives the lexical distance computed for each variable-ish
// expression. The interpreter satisfies this and stores the results in its
// side table before execution begins.
type Depths interface {
	Resolve(expr ast.Expr, depth int)
}

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver walks the tree once between parsing and execution. It computes the
// lexical depth of every local variable access and rejects the handful of
// constructs that are statically illegal, like 'return' at top level.
type Resolver struct {
	depths Depths
	scopes []map[string]bool // true once the name's initializer has run
	fn     functionType
	class  classType
	errors []error
}

func New(depths Depths) *Resolver {
	return &Resolver{depths: depths, fn: funcNone, class: classNone}
}

// Errors returns the diagnostics accumulated so far.
func (r *Resolver) Errors() []error {
	return r.errors
}

// ResolveProgram resolves a whole program's statements in order.
func (r *Resolver) ResolveProgram(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

// ResolveExpression resolves a single expression, as the REPL evaluates one.
func (r *Resolver) ResolveExpression(expr ast.Expr) {
	r.resolveExpr(expr)
}

func (r *Resolver) addError(tok token.Token, format string, args ...interface{}) {
	where := fmt.Sprintf("'%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = "end"
	}
	err := fmt.Errorf("[line %d] Error at %s: %s", tok.Line, where, fmt.Sprintf(format, args...))
	r.errors = append(r.errors, err)
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks the name as existing-but-uninitialized in the innermost
// scope. Globals are not tracked; redeclaring them is legal.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.addError(name, "Variable with name %s already declared in this scope.", name.Lexeme)
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal deposits the distance from the innermost scope to the one that
// declares the name. Names found in no scope are left to dynamic global
// lookup.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.depths.Resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionType) {
	enclosing := r.fn
	r.fn = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.ResolveProgram(fn.Body)
	r.endScope()

	r.fn = enclosing
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.ResolveProgram(s.Statements)
		r.endScope()

	case *ast.Var:
		r.declare(s.Name)
		r.resolveExpr(s.Initializer)
		r.define(s.Name)

	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, funcFunction)

	case *ast.Class:
		enclosing := r.class
		r.class = classClass

		r.declare(s.Name)
		r.define(s.Name)

		if s.HasSuperclass && s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.addError(s.Superclass.Name, "A class can not inherit from itself.")
		}
		r.resolveExpr(s.Superclass)

		if s.HasSuperclass {
			r.class = classSubclass
			r.beginScope()
			r.scopes[len(r.scopes)-1]["super"] = true
		}

		r.beginScope()
		r.scopes[len(r.scopes)-1]["this"] = true
		for _, method := range s.Methods {
			kind := funcMethod
			if method.Name.Lexeme == "init" {
				kind = funcInitializer
			}
			r.resolveFunction(method, kind)
		}
		r.endScope()

		if s.HasSuperclass {
			r.endScope()
		}
		r.class = enclosing

	case *ast.Expression:
		r.resolveExpr(s.Expression)

	case *ast.Print:
		r.resolveExpr(s.Expression)

	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		r.resolveStmt(s.Else)

	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.Return:
		if r.fn == funcNone {
			r.addError(s.Keyword, "Can not return from top-level code.")
		}
		if !s.Empty && r.fn == funcInitializer {
			r.addError(s.Keyword, "Can not return a value from an initializer.")
		}
		r.resolveExpr(s.Value)
	}
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// nothing to resolve

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.addError(e.Name, "Can not read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)

	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)

	case *ast.Unary:
		r.resolveExpr(e.Right)

	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Grouping:
		r.resolveExpr(e.Expression)

	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}

	case *ast.Get:
		r.resolveExpr(e.Object)

	case *ast.Set:
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Value)

	case *ast.This:
		if r.class == classNone {
			r.addError(e.Keyword, "Can not use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)

	case *ast.Super:
		switch r.class {
		case classNone:
			r.addError(e.Keyword, "Can not use 'super' outside of a class.")
			return
		case classClass:
			r.addError(e.Keyword, "Can not use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	}
}
