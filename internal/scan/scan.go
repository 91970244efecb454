// Package scan builds method inventories: every class and method pair in a
// set of source files, each with its structural size. An inventory is how
// worthwhile verification targets get found in the first place.
package scan

import (
	"sort"
	"strings"

	"github.com/refactorcheck/refactorcheck/internal/model"
	"github.com/refactorcheck/refactorcheck/internal/parse"
	"github.com/refactorcheck/refactorcheck/internal/size"
)

// Entry is one measured method in an inventory.
type Entry struct {
	File      string
	Class     string
	Method    string
	Line      int
	Size      int
	ClassSize int
}

// File parses source and returns an entry for every method declared directly
// by every class, nested classes included. When a method name is declared
// more than once each declaration gets its own row; the inventory reports
// what is written, resolution rules apply only when verifying. Entries come
// back in source order.
func File(path string, source []byte) ([]Entry, error) {
	unit, err := parse.Parse(source)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	model.WalkUnit(unit, func(n *model.Node) bool {
		if n.Kind != model.KindClassDef {
			return true
		}
		classSize := size.Of(n)
		for _, member := range n.Children {
			if member.Kind != model.KindFunctionDef || member.Name == "" {
				continue
			}
			entries = append(entries, Entry{
				File:      path,
				Class:     n.Name,
				Method:    member.Name,
				Line:      member.StartLine,
				Size:      size.Of(member),
				ClassSize: classSize,
			})
		}
		return true
	})
	return entries, nil
}

// SortBySize orders entries largest method first. Ties break on file path
// and then line so the ordering is total and runs are reproducible.
func SortBySize(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		return entries[i].Line < entries[j].Line
	})
}

// Select trims an inventory: entries smaller than min are dropped, the rest
// keep only rows whose class name contains classSubstr (case-insensitive),
// and at most top rows survive. top <= 0 keeps everything. Entries are
// expected already sorted, so the top cut keeps the largest survivors.
func Select(entries []Entry, top, min int, classSubstr string) []Entry {
	lower := strings.ToLower(classSubstr)

	var out []Entry
	for _, e := range entries {
		if e.Size < min {
			continue
		}
		if lower != "" && !strings.Contains(strings.ToLower(e.Class), lower) {
			continue
		}
		out = append(out, e)
	}

	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}
