package scan

import (
	"reflect"
	"strings"
	"testing"
)

func TestFileInventory(t *testing.T) {
	t.Parallel()

	src := "class A:\n" +
		"    def f(self):\n" +
		"        return 1 + 2\n" +
		"    def g(self):\n" +
		"        pass\n" +
		"\n" +
		"class B:\n" +
		"    def h(self):\n" +
		"        x = 1\n" +
		"        return x\n"

	entries, err := File("demo.py", []byte(src))
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	want := []Entry{
		{File: "demo.py", Class: "A", Method: "f", Line: 2, Size: 4, ClassSize: 5},
		{File: "demo.py", Class: "A", Method: "g", Line: 4, Size: 1, ClassSize: 5},
		{File: "demo.py", Class: "B", Method: "h", Line: 8, Size: 6, ClassSize: 6},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v\nwant %+v", entries, want)
	}
}

func TestFileNestedClasses(t *testing.T) {
	t.Parallel()

	src := "class Outer:\n" +
		"    def m(self):\n" +
		"        pass\n" +
		"\n" +
		"    class Inner:\n" +
		"        def n(self):\n" +
		"            return 1\n"

	entries, err := File("nested.py", []byte(src))
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	want := []Entry{
		{File: "nested.py", Class: "Outer", Method: "m", Line: 2, Size: 1, ClassSize: 3},
		{File: "nested.py", Class: "Inner", Method: "n", Line: 6, Size: 2, ClassSize: 2},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v\nwant %+v", entries, want)
	}
}

func TestFileDuplicateMethodRows(t *testing.T) {
	t.Parallel()

	src := "class C:\n" +
		"    def f(self):\n" +
		"        pass\n" +
		"    def f(self):\n" +
		"        x = 1\n"

	entries, err := File("dup.py", []byte(src))
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want one row per declaration", len(entries))
	}
	if entries[0].Line != 2 || entries[0].Size != 1 {
		t.Errorf("first = line %d size %d, want 2/1", entries[0].Line, entries[0].Size)
	}
	if entries[1].Line != 4 || entries[1].Size != 4 {
		t.Errorf("second = line %d size %d, want 4/4", entries[1].Line, entries[1].Size)
	}
}

func TestFileNoClasses(t *testing.T) {
	t.Parallel()

	entries, err := File("plain.py", []byte("def lonely():\n    pass\n"))
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("top-level functions are not inventory rows: %+v", entries)
	}
}

func TestFileSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := File("broken.py", []byte("def f(:\n"))
	if err == nil || !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("error = %v, want syntax error", err)
	}
}

func TestSortBySize(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{File: "b.py", Line: 10, Size: 5},
		{File: "a.py", Line: 3, Size: 9},
		{File: "a.py", Line: 8, Size: 5},
		{File: "a.py", Line: 2, Size: 5},
		{File: "a.py", Line: 1, Size: 2},
	}
	SortBySize(entries)

	want := []Entry{
		{File: "a.py", Line: 3, Size: 9},
		{File: "a.py", Line: 2, Size: 5},
		{File: "a.py", Line: 8, Size: 5},
		{File: "b.py", Line: 10, Size: 5},
		{File: "a.py", Line: 1, Size: 2},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("order = %+v\nwant %+v", entries, want)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Class: "TaskQueue", Size: 9},
		{Class: "Ledger", Size: 7},
		{Class: "LedgerView", Size: 5},
		{Class: "Scanner", Size: 3},
	}

	if got := Select(entries, 0, 0, ""); len(got) != 4 {
		t.Errorf("no filters kept %d, want 4", len(got))
	}
	if got := Select(entries, -1, 0, ""); len(got) != 4 {
		t.Errorf("top<=0 kept %d, want 4", len(got))
	}
	if got := Select(entries, 2, 0, ""); len(got) != 2 || got[1].Class != "Ledger" {
		t.Errorf("top 2 = %+v", got)
	}
	if got := Select(entries, 0, 5, ""); len(got) != 3 {
		t.Errorf("min 5 kept %d, want 3", len(got))
	}
	got := Select(entries, 0, 0, "ledger")
	if len(got) != 2 || got[0].Class != "Ledger" || got[1].Class != "LedgerView" {
		t.Errorf("class filter = %+v", got)
	}
	if got := Select(entries, 1, 0, "ledger"); len(got) != 1 || got[0].Class != "Ledger" {
		t.Errorf("top cut after filter = %+v", got)
	}
}
