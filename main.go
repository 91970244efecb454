// refactorcheck verifies that Python refactoring fixtures still have the
// structural sizes recorded for them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/refactorcheck/refactorcheck/internal/corpus"
	"github.com/refactorcheck/refactorcheck/internal/locate"
	"github.com/refactorcheck/refactorcheck/internal/parse"
	"github.com/refactorcheck/refactorcheck/internal/report"
	"github.com/refactorcheck/refactorcheck/internal/scan"
	"github.com/refactorcheck/refactorcheck/internal/verify"
)

var version = "dev"

func main() {
	if err := dispatch(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "scan":
			return runScan(args[1:], stdout, stderr)
		case "record":
			return runRecord(args[1:], stdout, stderr)
		}
	}
	return run(args, stdout, stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("refactorcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		runFilter   string
		workers     int
		quiet       bool
		verbose     bool
		showVersion bool
	)

	fs.StringVar(&runFilter, "run", "", "only run fixtures whose name contains this substring")
	fs.IntVar(&workers, "j", 0, "number of worker goroutines (default GOMAXPROCS)")
	fs.BoolVar(&quiet, "q", false, "print the summary line only")
	fs.BoolVar(&verbose, "v", false, "enable debug logging")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: refactorcheck [flags] [corpus-dir]
       refactorcheck scan [flags] <file-or-dir> [...]
       refactorcheck record [flags] [corpus-dir]

Run every fixture in the corpus manifest (%s) through the verifier
and report which recorded sizes still hold. The exit status is nonzero if
any fixture fails. corpus-dir defaults to the current directory.

Flags:
`, corpus.ManifestName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "refactorcheck %s\n", version)
		return nil
	}

	configureLogging(verbose, quiet, stderr)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving corpus dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("corpus dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}

	manifest, err := corpus.Load(dir)
	if err != nil {
		return err
	}
	logUncovered(dir, manifest)

	fixtures := manifest.Filter(runFilter)
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures match %q", runFilter)
	}

	log.WithFields(log.Fields{
		"corpus":   dir,
		"fixtures": len(fixtures),
	}).Debug("running verification")

	outcomes := verifyConcurrent(dir, fixtures, workers)

	if quiet {
		_, _ = fmt.Fprintln(stdout, report.Summary(outcomes))
	} else if err := report.WriteResults(stdout, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(outcomes))
	}
	return nil
}

func runScan(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("refactorcheck scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		top         int
		minSize     int
		classFilter string
		verbose     bool
	)

	fs.IntVar(&top, "top", 0, "keep only the N largest methods")
	fs.IntVar(&minSize, "min", 0, "drop methods smaller than this size")
	fs.StringVar(&classFilter, "class", "", "only methods of classes whose name contains this substring")
	fs.BoolVar(&verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: refactorcheck scan [flags] <file-or-dir> [...]

List every class method in the given Python sources with its structural
size, largest first. Directories are walked recursively; hidden entries,
cache directories, and anything matched by %s are skipped.

Flags:
`, corpus.IgnoreName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	configureLogging(verbose, false, stderr)

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no inputs given")
	}

	paths, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no Python sources found")
	}

	entries := scanFiles(paths)
	scan.SortBySize(entries)
	entries = scan.Select(entries, top, minSize, classFilter)

	return report.WriteInventory(stdout, entries)
}

// expandInputs resolves scan arguments: files pass through as given,
// directories are walked for Python sources.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		rels, err := corpus.DiscoverSources(arg)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
		for _, rel := range rels {
			paths = append(paths, filepath.Join(arg, filepath.FromSlash(rel)))
		}
	}
	return paths, nil
}

// scanFiles parses each file on the worker pool and merges the per-file
// entries back in input order. Unreadable or unparseable files are warned
// about and skipped; one bad file should not sink an inventory.
func scanFiles(paths []string) []scan.Entry {
	perFile := make([][]scan.Entry, len(paths))
	forEachIndex(len(paths), 0, func(i int) {
		source, err := os.ReadFile(paths[i])
		if err != nil {
			log.WithField("file", paths[i]).Warnf("skipped: %v", err)
			return
		}
		entries, err := scan.File(filepath.ToSlash(paths[i]), source)
		if err != nil {
			log.WithField("file", paths[i]).Warnf("skipped: %v", err)
			return
		}
		perFile[i] = entries
	})

	var all []scan.Entry
	for _, entries := range perFile {
		all = append(all, entries...)
	}
	return all
}

// verifyConcurrent fans fixtures out over the worker pool and returns
// outcomes in fixture order.
func verifyConcurrent(dir string, fixtures []corpus.Fixture, workers int) []report.Outcome {
	outcomes := make([]report.Outcome, len(fixtures))
	forEachIndex(len(fixtures), workers, func(i int) {
		outcomes[i] = runFixture(dir, fixtures[i])
	})
	return outcomes
}

func runFixture(dir string, f corpus.Fixture) report.Outcome {
	o := report.Outcome{Fixture: f}

	source, err := f.ReadSource(dir)
	if err != nil {
		o.Err = fmt.Errorf("reading %s: %w", f.File, err)
	} else {
		o.Report, o.Err = verify.Verify(source, f.Class, f.Method, f.MethodSize, f.ClassSize)
	}

	fields := log.Fields{"fixture": f.Name, "status": o.Status()}
	if o.Err != nil {
		fields["kind"] = errorKind(o.Err)
	}
	log.WithFields(fields).Debug("fixture checked")
	return o
}

// errorKind classifies a fixture error for logging.
func errorKind(err error) string {
	var syntaxErr *parse.SyntaxError
	var classErr *locate.ClassNotFoundError
	var methodErr *locate.MethodNotFoundError
	switch {
	case errors.As(err, &syntaxErr):
		return "syntax"
	case errors.As(err, &classErr):
		return "class-not-found"
	case errors.As(err, &methodErr):
		return "method-not-found"
	default:
		return "io"
	}
}

// forEachIndex runs fn over [0,n) using a bounded worker pool. Workers pull
// indices from a channel; fn invocations for distinct indices may run
// concurrently, so fn must only touch per-index state.
func forEachIndex(n, workers int, fn func(int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	work := make(chan int, n)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				fn(idx)
			}
		}()
	}

	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)
	wg.Wait()
}

// logUncovered flags Python sources in the corpus that no fixture refers to.
// Advisory only; scratch files can be excluded with .checkignore.
func logUncovered(dir string, m *corpus.Manifest) {
	sources, err := corpus.DiscoverSources(dir)
	if err != nil {
		return
	}
	referenced := make(map[string]struct{}, len(m.Fixtures))
	for _, f := range m.Fixtures {
		referenced[f.File] = struct{}{}
	}
	for _, s := range sources {
		if _, ok := referenced[s]; !ok {
			log.WithField("file", s).Debug("source not covered by any fixture")
		}
	}
}

func configureLogging(verbose, quiet bool, stderr io.Writer) {
	log.SetOutput(stderr)
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-run": true, "--run": true,
	"-j": true, "--j": true,
	"-top": true, "--top": true,
	"-min": true, "--min": true,
	"-class": true, "--class": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
