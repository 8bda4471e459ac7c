package interpreter

import (
	"errors"
	"fmt"

	"github.com/example/golox/ast"
	"github.com/example/golox/runtime"
)

// Function is a user-declared function or method. It closes over the
// environment in effect at its declaration.
type Function struct {
	declaration   *ast.Function
	closure       *runtime.Environment
	isInitializer bool
	interp        *Interpreter
}

func (f *Function) Arity() int {
	return len(f.declaration.Params)
}

// Call binds arguments to parameters in a fresh frame enclosing the closure
// and runs the body. A return statement unwinds here; initializers always
// yield 'this'.
func (f *Function) Call(args []*runtime.Value) (*runtime.Value, error) {
	env := runtime.NewEnvironment(f.closure)
	for idx, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[idx])
	}

	if err := f.interp.executeBlock(f.declaration.Body, env); err != nil {
		var ret returnSignal
		if !errors.As(err, &ret) {
			return nil, err
		}
		if f.isInitializer {
			return f.closure.GetAt(0, "this")
		}
		return ret.value, nil
	}

	if f.isInitializer {
		return f.closure.GetAt(0, "this")
	}
	return runtime.Nil, nil
}

// Bind produces a copy whose closure carries one extra frame defining 'this'.
func (f *Function) Bind(instance *runtime.Instance) runtime.Method {
	env := runtime.NewEnvironment(f.closure)
	env.Define("this", runtime.NewInstance(instance))
	return &Function{
		declaration:   f.declaration,
		closure:       env,
		isInitializer: f.isInitializer,
		interp:        f.interp,
	}
}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.declaration.Name.Lexeme)
}
