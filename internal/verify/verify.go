// Package verify checks a located method and its class against expected
// structural sizes.
package verify

import (
	"github.com/refactorcheck/refactorcheck/internal/locate"
	"github.com/refactorcheck/refactorcheck/internal/model"
	"github.com/refactorcheck/refactorcheck/internal/parse"
	"github.com/refactorcheck/refactorcheck/internal/size"
)

// Verify parses source, resolves className.methodName, measures both
// declarations, and compares against the expectations. Parse and resolution
// failures come back as errors; a size disagreement does not. It is an
// ordinary Report with Match() == false, because a mismatch is the tool
// doing its job, not the tool failing.
func Verify(source []byte, className, methodName string, wantMethod, wantClass int) (model.Report, error) {
	m, err := Measure(source, className, methodName)
	if err != nil {
		return model.Report{}, err
	}
	return model.Report{
		Method: model.SizeCheck{
			Name:     m.Method.Name,
			Line:     m.Method.Line,
			Expected: wantMethod,
			Actual:   m.Method.Size,
		},
		Class: model.SizeCheck{
			Name:     m.Class.Name,
			Line:     m.Class.Line,
			Expected: wantClass,
			Actual:   m.Class.Size,
		},
	}, nil
}

// Measure runs the same pipeline without expectations and returns the two
// computed sizes. The record workflow uses it to mint manifest entries.
func Measure(source []byte, className, methodName string) (model.Measurement, error) {
	unit, err := parse.Parse(source)
	if err != nil {
		return model.Measurement{}, err
	}

	loc, err := locate.Locate(unit, className, methodName)
	if err != nil {
		return model.Measurement{}, err
	}

	return model.Measurement{
		Class: model.SizeReport{
			Name: loc.Class.Name,
			Line: loc.Class.StartLine,
			Size: size.Of(loc.Class),
		},
		Method: model.SizeReport{
			Name: loc.Method.Name,
			Line: loc.Method.StartLine,
			Size: size.Of(loc.Method),
		},
	}, nil
}
