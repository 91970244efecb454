// Package locate resolves a class and method pair inside a parsed source unit.
package locate

import (
	"fmt"
	"strings"

	"github.com/refactorcheck/refactorcheck/internal/model"
)

// ClassNotFoundError reports that no class with the requested name is
// declared anywhere in the unit. Available lists the top-level declarations
// that do exist, which is usually enough to spot a typo or a stale fixture.
type ClassNotFoundError struct {
	Class     string
	Available []string
}

func (e *ClassNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("class %q not found: unit has no declarations", e.Class)
	}
	return fmt.Sprintf("class %q not found (declared: %s)", e.Class, strings.Join(e.Available, ", "))
}

// MethodNotFoundError reports that the class was found but declares no
// method with the requested name among its direct members.
type MethodNotFoundError struct {
	Class     string
	Method    string
	Available []string
}

func (e *MethodNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("method %q not found: class %q has no methods", e.Method, e.Class)
	}
	return fmt.Sprintf("method %q not found in class %q (declared: %s)", e.Method, e.Class, strings.Join(e.Available, ", "))
}

// Locate finds the class named className anywhere in the unit, then the
// method named methodName among that class's direct members.
//
// When a name is bound more than once, the later declaration wins. That
// matches what executing the module would leave behind: each def or class
// statement rebinds the name, so the binding in effect afterwards is the
// last one in source order. The pre-order walk visits declarations in source
// order, which makes "keep overwriting" implement the rule directly. Nested
// classes are eligible class targets, but methods are only ever looked up in
// the selected class's own body: a def inside a method, or inside a nested
// helper class, is not a member of the outer class.
func Locate(unit *model.SourceUnit, className, methodName string) (model.Located, error) {
	var class *model.Node
	model.WalkUnit(unit, func(n *model.Node) bool {
		if n.Kind == model.KindClassDef && n.Name == className {
			class = n
		}
		return true
	})
	if class == nil {
		return model.Located{}, &ClassNotFoundError{
			Class:     className,
			Available: declarationNames(unit.Body),
		}
	}

	var method *model.Node
	for _, member := range class.Children {
		if member.Kind == model.KindFunctionDef && member.Name == methodName {
			method = member
		}
	}
	if method == nil {
		return model.Located{}, &MethodNotFoundError{
			Class:     className,
			Method:    methodName,
			Available: MethodNames(class),
		}
	}

	return model.Located{Class: class, Method: method}, nil
}

// MethodNames returns the distinct method names a class declares directly,
// in order of first appearance.
func MethodNames(class *model.Node) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, member := range class.Children {
		if member.Kind != model.KindFunctionDef || member.Name == "" {
			continue
		}
		if _, ok := seen[member.Name]; ok {
			continue
		}
		seen[member.Name] = struct{}{}
		names = append(names, member.Name)
	}
	return names
}

func declarationNames(body []*model.Node) []string {
	var names []string
	for _, n := range body {
		if n.IsDeclaration() && n.Name != "" {
			names = append(names, n.Name)
		}
	}
	return names
}
