// Package corpus manages fixture corpora: directories of Python source files
// plus a YAML manifest binding each fixture to a target declaration and its
// expected sizes.
package corpus

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file expected in a corpus root.
const ManifestName = "fixtures.yaml"

// IgnoreName is an optional ignore file (gitignore syntax) that excludes
// scratch sources from discovery.
const IgnoreName = ".checkignore"

// Manifest is the parsed fixtures.yaml.
type Manifest struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// Fixture binds one source file to the declaration under check and the sizes
// it is expected to have. File is slash-separated and relative to the corpus
// root.
type Fixture struct {
	Name       string `yaml:"name"`
	File       string `yaml:"file"`
	Class      string `yaml:"class"`
	Method     string `yaml:"method"`
	MethodSize int    `yaml:"method_size"`
	ClassSize  int    `yaml:"class_size"`
}

// ManifestPath returns the manifest location inside a corpus directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// Load reads and validates the manifest in dir.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ManifestName, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Fixtures) == 0 {
		return fmt.Errorf("no fixtures declared")
	}

	seen := make(map[string]struct{}, len(m.Fixtures))
	for i, f := range m.Fixtures {
		if f.Name == "" {
			return fmt.Errorf("fixture %d: missing name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("fixture %q: duplicate name", f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.File == "" || f.Class == "" || f.Method == "" {
			return fmt.Errorf("fixture %q: file, class and method are required", f.Name)
		}
		clean := path.Clean(f.File)
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("fixture %q: file must stay inside the corpus root", f.Name)
		}
		if f.MethodSize < 0 || f.ClassSize < 0 {
			return fmt.Errorf("fixture %q: sizes must be non-negative", f.Name)
		}
	}
	return nil
}

// Filter returns the fixtures whose names contain substr. An empty substr
// keeps everything.
func (m *Manifest) Filter(substr string) []Fixture {
	if substr == "" {
		return m.Fixtures
	}
	var out []Fixture
	for _, f := range m.Fixtures {
		if strings.Contains(f.Name, substr) {
			out = append(out, f)
		}
	}
	return out
}

// ReadSource loads the fixture's Python source from the corpus root.
func (f Fixture) ReadSource(dir string) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.File)))
}

// Sizes carries freshly measured values for one fixture.
type Sizes struct {
	Method int
	Class  int
}

// UpdateSizes returns a copy of manifest data with each named fixture's
// method_size and class_size replaced. The document is edited node by node
// rather than re-marshalled from structs, so comments, entry order, and any
// fields this tool does not know about survive the rewrite. Entries that
// lack the size keys gain them, which is how a freshly added fixture gets
// its first recorded values.
func UpdateSizes(data []byte, sizes map[string]Sizes) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	seq := mappingValue(root, "fixtures")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("manifest has no fixtures list")
	}

	for _, entry := range seq.Content {
		nameNode := mappingValue(entry, "name")
		if nameNode == nil {
			continue
		}
		s, ok := sizes[nameNode.Value]
		if !ok {
			continue
		}
		setInt(entry, "method_size", s.Method)
		setInt(entry, "class_size", s.Class)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func setInt(mapping *yaml.Node, key string, v int) {
	val := strconv.Itoa(v)
	if node := mappingValue(mapping, key); node != nil {
		node.Value = val
		node.Tag = "!!int"
		node.Style = 0
		return
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: val},
	)
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"build":         {},
	"dist":          {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// DiscoverSources returns every Python source file under root as sorted,
// slash-separated paths relative to root. Hidden entries, the usual cache
// and vendor directories, and anything matched by an optional .checkignore
// file are skipped.
func DiscoverSources(root string) ([]string, error) {
	gi := loadIgnore(root)

	var results []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		name := d.Name()

		if d.IsDir() {
			if p == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(name) != ".py" {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

func loadIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, IgnoreName))
	if err != nil {
		return nil
	}
	return gi
}
