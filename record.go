package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/refactorcheck/refactorcheck/internal/corpus"
	"github.com/refactorcheck/refactorcheck/internal/report"
	"github.com/refactorcheck/refactorcheck/internal/verify"
)

// runRecord implements the `refactorcheck record` subcommand, which
// re-measures every fixture in a corpus and writes the fresh sizes back into
// its manifest.
func runRecord(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("refactorcheck record", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun  bool
		verbose bool
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print the new sizes without modifying the manifest")
	fs.BoolVar(&verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: refactorcheck record [flags] [corpus-dir]

Re-measure every fixture in the corpus and rewrite method_size and
class_size in %s with the freshly computed values. Comments and entry
order in the manifest are preserved. Use this after an intentional
structural change, or to mint sizes for newly added fixtures.

corpus-dir defaults to the current directory.

Flags:
`, corpus.ManifestName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	configureLogging(verbose, false, stderr)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	manifest, err := corpus.Load(dir)
	if err != nil {
		return err
	}

	changes, sizes, err := measureAll(dir, manifest)
	if err != nil {
		return err
	}

	if err := writeChanges(stdout, changes); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	path := corpus.ManifestPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	updated, err := corpus.UpdateSizes(data, sizes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "recorded %d fixtures to %s\n", len(sizes), path)
	return nil
}

type sizeChange struct {
	name      string
	oldMethod int
	newMethod int
	oldClass  int
	newClass  int
}

func (c sizeChange) changed() bool {
	return c.oldMethod != c.newMethod || c.oldClass != c.newClass
}

// measureAll runs the measuring pipeline over every fixture. Any failure
// aborts the whole record: a manifest holding a mix of fresh and stale sizes
// would be worse than one left untouched.
func measureAll(dir string, manifest *corpus.Manifest) ([]sizeChange, map[string]corpus.Sizes, error) {
	changes := make([]sizeChange, 0, len(manifest.Fixtures))
	sizes := make(map[string]corpus.Sizes, len(manifest.Fixtures))

	for _, f := range manifest.Fixtures {
		source, err := f.ReadSource(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture %s: reading %s: %w", f.Name, f.File, err)
		}
		m, err := verify.Measure(source, f.Class, f.Method)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture %s: %w", f.Name, err)
		}

		changes = append(changes, sizeChange{
			name:      f.Name,
			oldMethod: f.MethodSize,
			newMethod: m.Method.Size,
			oldClass:  f.ClassSize,
			newClass:  m.Class.Size,
		})
		sizes[f.Name] = corpus.Sizes{Method: m.Method.Size, Class: m.Class.Size}

		log.WithFields(log.Fields{
			"fixture": f.Name,
			"method":  m.Method.Size,
			"class":   m.Class.Size,
		}).Debug("measured")
	}
	return changes, sizes, nil
}

func writeChanges(w io.Writer, changes []sizeChange) error {
	rows := make([][]string, 0, len(changes))
	updated := 0
	for _, c := range changes {
		status := "unchanged"
		if c.changed() {
			status = "updated"
			updated++
		}
		rows = append(rows, []string{
			c.name,
			sizeTransition(c.oldMethod, c.newMethod),
			sizeTransition(c.oldClass, c.newClass),
			status,
		})
	}
	if err := report.Table(w, []string{"FIXTURE", "METHOD", "CLASS", "STATUS"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d fixtures updated\n", updated, len(changes))
	return err
}

func sizeTransition(old, now int) string {
	if old == now {
		return strconv.Itoa(now)
	}
	return fmt.Sprintf("%d -> %d", old, now)
}
