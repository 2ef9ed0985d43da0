package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
)

type importCmd struct {
	source string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "ingest an exported scan file into the price ledger" }
func (*importCmd) Usage() string {
	return `tradefury import [-source <label>] <file>

  Parses a SavedVariables export, resolves item names, and merges the
  resulting price observations into the persisted ledger.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "source label stored on each observation (default: file name)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one export file is required.")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)

	app, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.resolver.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", path, err)
		return subcommands.ExitFailure
	}

	source := c.source
	if source == "" {
		source = filepath.Base(path)
	}

	imp, err := app.ingest.Parse(ctx, string(data), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nProvide a valid add-on export containing a price or history table.\n", err)
		return subcommands.ExitFailure
	}

	merged, err := app.ingest.MergeInto(ctx, imp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ledger not persisted: %v\n", err)
	}

	observations := 0
	for _, h := range imp.ItemPrices {
		observations += len(h)
	}
	fmt.Printf("Imported %d observations for %d items (%d names unresolved).\n",
		observations, len(imp.ItemPrices), imp.Unresolved)
	fmt.Printf("Ledger now tracks %d items in %s.\n", len(merged), app.cfg.DataDir)
	return subcommands.ExitSuccess
}
