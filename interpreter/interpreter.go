package interpreter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/golox/ast"
	"github.com/example/golox/builtins"
	"github.com/example/golox/lexer"
	"github.com/example/golox/parser"
	"github.com/example/golox/resolver"
	"github.com/example/golox/runtime"
	"github.com/example/golox/token"
)

// RuntimeError is an error raised while evaluating. The token locates the
// operator or name that failed.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line)
}

// StaticError bundles the diagnostics of a failed lex, parse, or resolve
// pass. Execution never starts when one is present.
type StaticError struct {
	Errors []error
}

func (e *StaticError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// returnSignal unwinds the interpreter out of a function body. It travels as
// an error and is caught at the nearest call boundary.
type returnSignal struct {
	value *runtime.Value
}

func (returnSignal) Error() string {
	return "return outside function"
}

// Interpreter executes resolved programs. One instance carries the globals
// and the resolution side table, so a REPL can feed it source line by line.
type Interpreter struct {
	globals *runtime.Environment
	env     *runtime.Environment
	locals  map[ast.Expr]int
	stdout  io.Writer
}

func New(stdout io.Writer) *Interpreter {
	globals := runtime.NewEnvironment(nil)
	builtins.RegisterAll(globals)
	return &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(map[ast.Expr]int),
		stdout:  stdout,
	}
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *runtime.Environment {
	return i.globals
}

// Resolve records the lexical depth of a variable expression. The resolver
// calls this once per resolved local.
func (i *Interpreter) Resolve(expr ast.Expr, depth int) {
	i.locals[expr] = depth
}

// Eval runs a complete source text through every stage. It returns the value
// of the last expression statement, or nil when the program ends on another
// statement kind. A *StaticError reports front-end diagnostics; a
// *RuntimeError reports an evaluation failure.
func (i *Interpreter) Eval(source string) (*runtime.Value, error) {
	l := lexer.New(source)
	tokens := l.Scan()

	p := parser.New(tokens)
	program := p.Parse()

	static := append(append([]error{}, l.Errors()...), p.Errors()...)
	if len(static) > 0 {
		return nil, &StaticError{Errors: static}
	}

	r := resolver.New(i)
	r.ResolveProgram(program)
	if errs := r.Errors(); len(errs) > 0 {
		return nil, &StaticError{Errors: errs}
	}

	return i.Interpret(program)
}

// EvalExpression evaluates a single expression, as the REPL does for input
// like "1 + 2".
func (i *Interpreter) EvalExpression(source string) (*runtime.Value, error) {
	l := lexer.New(source)
	tokens := l.Scan()

	p := parser.New(tokens)
	expr := p.ParseExpression()

	static := append(append([]error{}, l.Errors()...), p.Errors()...)
	if len(static) > 0 {
		return nil, &StaticError{Errors: static}
	}

	r := resolver.New(i)
	r.ResolveExpression(expr)
	if errs := r.Errors(); len(errs) > 0 {
		return nil, &StaticError{Errors: errs}
	}

	return i.evalExpr(expr)
}

// Interpret executes an already-resolved program and returns the value of its
// last statement, which is nil unless that statement is an expression
// statement.
func (i *Interpreter) Interpret(program []ast.Stmt) (*runtime.Value, error) {
	var last *runtime.Value
	for _, stmt := range program {
		v, err := i.execStmt(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// execStmt executes one statement. Expression statements yield their value so
// the REPL can echo it; every other kind yields nil.
func (i *Interpreter) execStmt(stmt ast.Stmt) (*runtime.Value, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		return i.evalExpr(s.Expression)

	case *ast.Print:
		v, err := i.evalExpr(s.Expression)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(i.stdout, v.String())
		return nil, nil

	case *ast.Var:
		v, err := i.evalExpr(s.Initializer)
		if err != nil {
			return nil, err
		}
		i.env.Define(s.Name.Lexeme, v)
		return nil, nil

	case *ast.Block:
		return nil, i.executeBlock(s.Statements, runtime.NewEnvironment(i.env))

	case *ast.If:
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			_, err = i.execStmt(s.Then)
		} else {
			_, err = i.execStmt(s.Else)
		}
		return nil, err

	case *ast.While:
		for {
			cond, err := i.evalExpr(s.Condition)
			if err != nil {
				return nil, err
			}
			if !cond.Truthy() {
				return nil, nil
			}
			if _, err := i.execStmt(s.Body); err != nil {
				return nil, err
			}
		}

	case *ast.Function:
		fn := &Function{declaration: s, closure: i.env, interp: i}
		i.env.Define(s.Name.Lexeme, runtime.NewCallable(fn))
		return nil, nil

	case *ast.Return:
		v, err := i.evalExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}

	case *ast.Class:
		return nil, i.execClass(s)

	default:
		return nil, &RuntimeError{Message: "Unknown statement."}
	}
}

// executeBlock runs statements in the given environment and restores the
// previous one on every exit path.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *runtime.Environment) error {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, stmt := range stmts {
		if _, err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execClass(s *ast.Class) error {
	superVal, err := i.evalExpr(s.Superclass)
	if err != nil {
		return err
	}
	superclass, ok := asClass(superVal)
	if !ok {
		return &RuntimeError{Token: s.Superclass.Name, Message: "Super class must be a class."}
	}

	i.env.Define(s.Name.Lexeme, runtime.Nil)

	methodEnv := i.env
	if s.HasSuperclass {
		methodEnv = runtime.NewEnvironment(i.env)
		methodEnv.Define("super", superVal)
	}

	methods := make(map[string]runtime.Method, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &Function{
			declaration:   m,
			closure:       methodEnv,
			isInitializer: m.Name.Lexeme == "init",
			interp:        i,
		}
	}

	class := &runtime.Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	if err := i.env.Assign(s.Name.Lexeme, runtime.NewCallable(class)); err != nil {
		return &RuntimeError{Token: s.Name, Message: err.Error()}
	}
	return nil
}

func asClass(v *runtime.Value) (*runtime.Class, bool) {
	if v.Type != runtime.TypeCallable {
		return nil, false
	}
	c, ok := v.Callable.(*runtime.Class)
	return c, ok
}

func (i *Interpreter) evalExpr(expr ast.Expr) (*runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		switch v := e.Value.(type) {
		case nil:
			return runtime.Nil, nil
		case bool:
			return runtime.NewBool(v), nil
		case float64:
			return runtime.NewNumber(v), nil
		case string:
			return runtime.NewString(v), nil
		default:
			return nil, &RuntimeError{Message: fmt.Sprintf("Unknown literal %v.", v)}
		}

	case *ast.Grouping:
		return i.evalExpr(e.Expression)

	case *ast.Unary:
		return i.evalUnary(e)

	case *ast.Binary:
		return i.evalBinary(e)

	case *ast.Logical:
		left, err := i.evalExpr(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == token.Or {
			if left.Truthy() {
				return left, nil
			}
		} else {
			if !left.Truthy() {
				return left, nil
			}
		}
		return i.evalExpr(e.Right)

	case *ast.Variable:
		return i.lookUpVariable(e.Name, e)

	case *ast.Assign:
		v, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if depth, ok := i.locals[e]; ok {
			err = i.env.AssignAt(depth, e.Name.Lexeme, v)
		} else {
			err = i.globals.Assign(e.Name.Lexeme, v)
		}
		if err != nil {
			return nil, &RuntimeError{Token: e.Name, Message: err.Error()}
		}
		return v, nil

	case *ast.Call:
		return i.evalCall(e)

	case *ast.Get:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		if obj.Type != runtime.TypeInstance {
			return nil, &RuntimeError{Token: e.Name, Message: "Can not access property from a non-instance value."}
		}
		v, err := obj.Instance.Get(e.Name.Lexeme)
		if err != nil {
			return nil, &RuntimeError{Token: e.Name, Message: err.Error()}
		}
		return v, nil

	case *ast.Set:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		if obj.Type != runtime.TypeInstance {
			return nil, &RuntimeError{Token: e.Name, Message: "Only objects have fields"}
		}
		v, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		obj.Instance.Set(e.Name.Lexeme, v)
		return v, nil

	case *ast.This:
		return i.lookUpVariable(e.Keyword, e)

	case *ast.Super:
		return i.evalSuper(e)

	default:
		return nil, &RuntimeError{Message: "Unknown expression."}
	}
}

func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (*runtime.Value, error) {
	var v *runtime.Value
	var err error
	if depth, ok := i.locals[expr]; ok {
		v, err = i.env.GetAt(depth, name.Lexeme)
	} else {
		v, err = i.globals.Get(name.Lexeme)
	}
	if err != nil {
		return nil, &RuntimeError{Token: name, Message: err.Error()}
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary) (*runtime.Value, error) {
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.Minus:
		if right.Type != runtime.TypeNumber {
			return nil, &RuntimeError{Token: e.Operator, Message: "Operand must be a number."}
		}
		return runtime.NewNumber(-right.Number), nil
	case token.Bang:
		return runtime.NewBool(!right.Truthy()), nil
	}
	return nil, &RuntimeError{Token: e.Operator, Message: "Unknown unary operator."}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (*runtime.Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	bothNumbers := left.Type == runtime.TypeNumber && right.Type == runtime.TypeNumber

	switch e.Operator.Type {
	case token.Plus, token.Minus, token.Star, token.Slash:
		if !bothNumbers {
			return nil, &RuntimeError{Token: e.Operator, Message: "Operands must be numbers."}
		}
	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		if !bothNumbers {
			return nil, &RuntimeError{Token: e.Operator, Message: "Operands must be numbers."}
		}
	case token.PlusPlus:
		if left.Type != runtime.TypeString || right.Type != runtime.TypeString {
			return nil, &RuntimeError{Token: e.Operator, Message: "Operands must be strings."}
		}
	}

	switch e.Operator.Type {
	case token.Plus:
		return runtime.NewNumber(left.Number + right.Number), nil
	case token.Minus:
		return runtime.NewNumber(left.Number - right.Number), nil
	case token.Star:
		return runtime.NewNumber(left.Number * right.Number), nil
	case token.Slash:
		// Division by zero follows IEEE-754.
		return runtime.NewNumber(left.Number / right.Number), nil
	case token.PlusPlus:
		return runtime.NewString(left.Str + right.Str), nil
	case token.Greater:
		return runtime.NewBool(left.Number > right.Number), nil
	case token.GreaterEqual:
		return runtime.NewBool(left.Number >= right.Number), nil
	case token.Less:
		return runtime.NewBool(left.Number < right.Number), nil
	case token.LessEqual:
		return runtime.NewBool(left.Number <= right.Number), nil
	case token.EqualEqual:
		return runtime.NewBool(runtime.Equals(left, right)), nil
	case token.BangEqual:
		return runtime.NewBool(!runtime.Equals(left, right)), nil
	}
	return nil, &RuntimeError{Token: e.Operator, Message: "Unknown binary operator."}
}

func (i *Interpreter) evalCall(e *ast.Call) (*runtime.Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]*runtime.Value, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		v, err := i.evalExpr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if callee.Type != runtime.TypeCallable {
		return nil, &RuntimeError{Token: e.Paren, Message: "Only functions and classes are callable."}
	}
	fn := callee.Callable

	if len(args) != fn.Arity() {
		return nil, &RuntimeError{
			Token:   e.Paren,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
		}
	}

	v, err := fn.Call(args)
	if err != nil {
		var re *RuntimeError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &RuntimeError{Token: e.Paren, Message: err.Error()}
	}
	return v, nil
}

func (i *Interpreter) evalSuper(e *ast.Super) (*runtime.Value, error) {
	depth := i.locals[e]

	superVal, err := i.env.GetAt(depth, "super")
	if err != nil {
		return nil, &RuntimeError{Token: e.Keyword, Message: err.Error()}
	}
	superclass, _ := asClass(superVal)

	thisVal, err := i.env.GetAt(depth-1, "this")
	if err != nil {
		return nil, &RuntimeError{Token: e.Keyword, Message: err.Error()}
	}

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, &RuntimeError{Token: e.Method, Message: fmt.Sprintf("Undefined method %s.", e.Method.Lexeme)}
	}
	return runtime.NewCallable(method.Bind(thisVal.Instance)), nil
}
