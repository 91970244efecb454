package locate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/refactorcheck/refactorcheck/internal/model"
	"github.com/refactorcheck/refactorcheck/internal/parse"
)

func mustParse(t *testing.T, src string) *model.SourceUnit {
	t.Helper()
	unit, err := parse.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return unit
}

func TestLocateBasic(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "class A:\n    def f(self):\n        pass\n")
	loc, err := Locate(unit, "A", "f")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Class.Name != "A" || loc.Class.StartLine != 1 {
		t.Errorf("class = %q at line %d, want A at 1", loc.Class.Name, loc.Class.StartLine)
	}
	if loc.Method.Name != "f" || loc.Method.StartLine != 2 {
		t.Errorf("method = %q at line %d, want f at 2", loc.Method.Name, loc.Method.StartLine)
	}
}

func TestLocateDuplicateMethodLastWins(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "class A:\n    def f(self):\n        return 1\n    def f(self):\n        return 2\n")
	loc, err := Locate(unit, "A", "f")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Method.StartLine != 4 {
		t.Errorf("method line = %d, want 4 (the later definition)", loc.Method.StartLine)
	}
}

func TestLocateDuplicateClassLastWins(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "class C:\n    def m(self):\n        return 1\n\nclass C:\n    def m(self):\n        return 2\n")
	loc, err := Locate(unit, "C", "m")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Class.StartLine != 5 {
		t.Errorf("class line = %d, want 5 (the later class)", loc.Class.StartLine)
	}
	if loc.Method.StartLine != 6 {
		t.Errorf("method line = %d, want 6", loc.Method.StartLine)
	}
}

func TestLocatePropertySetterWins(t *testing.T) {
	t.Parallel()

	src := "class T:\n" +
		"    @property\n" +
		"    def value(self):\n" +
		"        return self._value\n" +
		"    @value.setter\n" +
		"    def value(self, v):\n" +
		"        self._value = v\n"
	unit := mustParse(t, src)
	loc, err := Locate(unit, "T", "value")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Method.StartLine != 6 {
		t.Errorf("method line = %d, want 6 (the setter)", loc.Method.StartLine)
	}
	if got := MethodNames(loc.Class); !reflect.DeepEqual(got, []string{"value"}) {
		t.Errorf("MethodNames = %v, want [value]", got)
	}
}

func TestLocateNestedClass(t *testing.T) {
	t.Parallel()

	src := "class Outer:\n" +
		"    def f(self):\n" +
		"        pass\n" +
		"\n" +
		"    class Inner:\n" +
		"        def g(self):\n" +
		"            pass\n"
	unit := mustParse(t, src)

	loc, err := Locate(unit, "Inner", "g")
	if err != nil {
		t.Fatalf("Locate(Inner, g): %v", err)
	}
	if loc.Class.Name != "Inner" || loc.Class.StartLine != 5 {
		t.Errorf("class = %q at line %d, want Inner at 5", loc.Class.Name, loc.Class.StartLine)
	}

	// Inner's methods do not belong to Outer.
	_, err = Locate(unit, "Outer", "g")
	var notFound *MethodNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Locate(Outer, g): error = %v, want *MethodNotFoundError", err)
	}
	if !reflect.DeepEqual(notFound.Available, []string{"f"}) {
		t.Errorf("available = %v, want [f]", notFound.Available)
	}
}

func TestLocateNestedFunctionIsNotAMethod(t *testing.T) {
	t.Parallel()

	src := "class A:\n" +
		"    def f(self):\n" +
		"        def helper():\n" +
		"            pass\n" +
		"        return helper\n"
	unit := mustParse(t, src)

	_, err := Locate(unit, "A", "helper")
	var notFound *MethodNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *MethodNotFoundError", err)
	}
	if notFound.Class != "A" || notFound.Method != "helper" {
		t.Errorf("error fields = %q/%q, want A/helper", notFound.Class, notFound.Method)
	}
	if !reflect.DeepEqual(notFound.Available, []string{"f"}) {
		t.Errorf("available = %v, want [f]", notFound.Available)
	}
}

func TestLocateClassNotFound(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "class A:\n    pass\n\ndef helper():\n    pass\n")
	_, err := Locate(unit, "B", "x")
	var notFound *ClassNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ClassNotFoundError", err)
	}
	if notFound.Class != "B" {
		t.Errorf("class = %q, want B", notFound.Class)
	}
	if !reflect.DeepEqual(notFound.Available, []string{"A", "helper"}) {
		t.Errorf("available = %v, want [A helper]", notFound.Available)
	}
	if !strings.Contains(err.Error(), `class "B" not found (declared: A, helper)`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLocateEmptyUnit(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "x = 1\n")
	_, err := Locate(unit, "A", "f")
	var notFound *ClassNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ClassNotFoundError", err)
	}
	if len(notFound.Available) != 0 {
		t.Errorf("available = %v, want empty", notFound.Available)
	}
	if !strings.Contains(err.Error(), "unit has no declarations") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLocateMethodNotFoundEmptyClass(t *testing.T) {
	t.Parallel()

	unit := mustParse(t, "class A:\n    pass\n")
	_, err := Locate(unit, "A", "f")
	var notFound *MethodNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *MethodNotFoundError", err)
	}
	if !strings.Contains(err.Error(), `class "A" has no methods`) {
		t.Errorf("message = %q", err.Error())
	}
}
