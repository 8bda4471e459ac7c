package runtime

import (
	"strings"
	"testing"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("a", NewNumber(1))
	v, err := env.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Number != 1 {
		t.Errorf("got %v, want 1", v.Number)
	}
}

func TestGetWalksChain(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NewString("outer"))
	inner := NewEnvironment(outer)
	v, err := inner.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Str != "outer" {
		t.Errorf("got %q, want outer", v.Str)
	}
}

func TestUndefinedGet(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Get("missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Undefined variable missing." {
		t.Errorf("error=%q", err.Error())
	}
}

func TestAssignUpdatesDefiningScope(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NewNumber(1))
	inner := NewEnvironment(outer)
	if err := inner.Assign("a", NewNumber(2)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	v, _ := outer.Get("a")
	if v.Number != 2 {
		t.Errorf("outer binding=%v, want 2", v.Number)
	}
}

func TestAssignUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("ghost", Nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Cannot assign value to undefined variable ghost.") {
		t.Errorf("error=%q", err.Error())
	}
}

func TestShadowing(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NewString("outer"))
	inner := NewEnvironment(outer)
	inner.Define("a", NewString("inner"))

	v, _ := inner.Get("a")
	if v.Str != "inner" {
		t.Errorf("inner read=%q, want inner", v.Str)
	}
	v, _ = outer.Get("a")
	if v.Str != "outer" {
		t.Errorf("outer read=%q, want outer", v.Str)
	}
}

func TestGetAtSkipsShadow(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NewString("outer"))
	inner := NewEnvironment(outer)
	inner.Define("a", NewString("inner"))

	v, err := inner.GetAt(1, "a")
	if err != nil {
		t.Fatalf("GetAt: %v", err)
	}
	if v.Str != "outer" {
		t.Errorf("GetAt(1)=%q, want outer", v.Str)
	}
	v, _ = inner.GetAt(0, "a")
	if v.Str != "inner" {
		t.Errorf("GetAt(0)=%q, want inner", v.Str)
	}
}

func TestAssignAt(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NewNumber(1))
	inner := NewEnvironment(outer)
	inner.Define("a", NewNumber(10))

	if err := inner.AssignAt(1, "a", NewNumber(2)); err != nil {
		t.Fatalf("AssignAt: %v", err)
	}
	v, _ := outer.Get("a")
	if v.Number != 2 {
		t.Errorf("outer binding=%v, want 2", v.Number)
	}
	v, _ = inner.Get("a")
	if v.Number != 10 {
		t.Errorf("inner binding=%v, want 10", v.Number)
	}
}
