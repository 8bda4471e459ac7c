package runtime

import "fmt"

// Callable is anything invocable with (). Functions, classes, and natives
// all implement it.
type Callable interface {
	Arity() int
	Call(args []*Value) (*Value, error)
	String() string
}

// Method is a callable that can be rebound to a receiver. User-defined
// functions implement it; Bind returns a copy whose closure carries 'this'.
type Method interface {
	Callable
	Bind(instance *Instance) Method
}

// Class is a Lox class. Calling it constructs an instance and runs 'init'
// when one is declared.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]Method
}

// FindMethod looks the name up on the class, then along the superclass chain.
func (c *Class) FindMethod(name string) (Method, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Arity is the arity of 'init', declared on the class or inherited from a
// superclass, or zero when neither has one.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs a fresh instance. When an 'init' method exists it runs
// bound to the new instance; its return value is discarded in favor of the
// instance itself.
func (c *Class) Call(args []*Value) (*Value, error) {
	instance := &Instance{Class: c, Fields: make(map[string]*Value)}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(args); err != nil {
			return nil, err
		}
	}
	return NewInstance(instance), nil
}

func (c *Class) String() string {
	return c.Name
}

// Instance is an object created by calling a class. Fields are per-instance
// state; methods live on the class.
type Instance struct {
	Class  *Class
	Fields map[string]*Value
}

// Get reads a property. Fields shadow methods; a method lookup returns the
// method bound to this instance.
func (i *Instance) Get(name string) (*Value, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if m, ok := i.Class.FindMethod(name); ok {
		return NewCallable(m.Bind(i)), nil
	}
	return nil, fmt.Errorf("Undefined property %s.", name)
}

// Set writes a field, creating it if absent. There is no failure mode.
func (i *Instance) Set(name string, value *Value) {
	i.Fields[name] = value
}

func (i *Instance) String() string {
	return i.Class.Name + " instance"
}

// Native is a function implemented in Go and exposed to Lox programs.
type Native struct {
	Name   string
	ArityN int
	Fn     func(args []*Value) (*Value, error)
}

func (n *Native) Arity() int {
	return n.ArityN
}

func (n *Native) Call(args []*Value) (*Value, error) {
	return n.Fn(args)
}

func (n *Native) String() string {
	return "<native fn>"
}
