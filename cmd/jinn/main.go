// jinn is a small command-line front end over [github.com/jinndb/jinn/pkg/jinn]:
// open or create a database file and drop into a REPL, or run a one-shot
// benchmark.
//
// Usage:
//
//	jinn <file>                 Open (or create) a database and start the REPL
//	jinn new [opts] <file>      Create a new database file, then start the REPL
//	jinn bench [opts] <file>    Seed synthetic records and report throughput
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jinndb/jinn/pkg/jinn"
	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()

		return fmt.Errorf("missing command or database file path")
	}

	switch args[0] {
	case "new":
		return runNew(args[1:])
	case "bench":
		return runBench(args[1:])
	case "help", "-h", "--help":
		printUsage()

		return nil
	default:
		return runOpen(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  jinn <file>                 Open (or create) a database and start the REPL")
	fmt.Fprintln(os.Stderr, "  jinn new [opts] <file>      Create a new database file, then start the REPL")
	fmt.Fprintln(os.Stderr, "  jinn bench [opts] <file>    Seed synthetic records and report throughput")
}

func commonFlags(fs *flag.FlagSet) (compressed *bool, maxCacheSize *uint64, configPath *string) {
	compressed = fs.Bool("compressed", false, "enable SMAZ-style block compression")
	maxCacheSize = fs.Uint64("max-cache-size", 0, "in-memory cache budget in bytes (0 = default)")
	configPath = fs.String("config", "", "explicit config file path")

	return
}

func openDB(path string, compressed bool, maxCacheSize uint64, configPath string) (*jinn.DB, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}

	overrides := Config{Compressed: compressed, MaxCacheSize: maxCacheSize}
	overrideSet := map[string]bool{}

	if compressed {
		overrideSet["compressed"] = true
	}

	if maxCacheSize != 0 {
		overrideSet["max-cache-size"] = true
	}

	cfg, err := LoadConfig(workDir, configPath, overrides, overrideSet)
	if err != nil {
		return nil, err
	}

	return jinn.Open(jinn.Options{
		Path:         path,
		Compressed:   cfg.Compressed,
		MaxCacheSize: cfg.MaxCacheSize,
	})
}

func runOpen(args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	compressed, maxCacheSize, configPath := commonFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		printUsage()

		return fmt.Errorf("missing database file path")
	}

	path := fs.Arg(0)

	return withSessionLock(path, func() error {
		db, err := openDB(path, *compressed, *maxCacheSize, *configPath)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		defer db.Close()

		return (&REPL{db: db}).Run()
	})
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	compressed, maxCacheSize, configPath := commonFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		printUsage()

		return fmt.Errorf("missing database file path")
	}

	path := fs.Arg(0)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s (use 'jinn %s' to open it)", path, path)
	}

	return withSessionLock(path, func() error {
		db, err := openDB(path, *compressed, *maxCacheSize, *configPath)
		if err != nil {
			return fmt.Errorf("creating %q: %w", path, err)
		}
		defer db.Close()

		return (&REPL{db: db}).Run()
	})
}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	compressed, maxCacheSize, configPath := commonFlags(fs)
	count := fs.Int("count", 10000, "number of records to seed")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		printUsage()

		return fmt.Errorf("missing database file path")
	}

	path := fs.Arg(0)

	return withSessionLock(path, func() error {
		db, err := openDB(path, *compressed, *maxCacheSize, *configPath)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		defer db.Close()

		return benchSeedAndQuery(db, *count)
	})
}

// benchSeedAndQuery inserts count synthetic records and times a subsequent
// full-table find, grounded on the teacher's seed-bench.go throughput
// measurement style.
func benchSeedAndQuery(db *jinn.DB, count int) error {
	colors := []string{"red", "yellow", "green", "blue"}

	start := time.Now()

	for i := range count {
		_, err := db.Insert(jinn.Record{
			"n":     i,
			"color": colors[rand.Intn(len(colors))], //nolint:gosec // benchmark data, not security-sensitive
		})
		if err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}

	insertElapsed := time.Since(start)

	start = time.Now()

	results, err := db.Find(jinn.Query{"color": "red"}, jinn.FindOptions{})
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}

	findElapsed := time.Since(start)

	fmt.Printf("inserted %d records in %s (%.0f/s)\n", count, insertElapsed, float64(count)/insertElapsed.Seconds())
	fmt.Printf("found %d records in %s\n", len(results), findElapsed)

	return nil
}

func withSessionLock(path string, fn func() error) error {
	lock, err := acquireSessionLock(path, lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	return fn()
}
