package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
	"github.com/DominusFuror/tradefury/internal/domain/model"
)

type pricesCmd struct {
	limit int
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "show the recorded price history for an item" }
func (*pricesCmd) Usage() string {
	return `tradefury prices [-n <count>] <item-id | display name>

  Prints the persisted price history of an item, oldest first.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "show only the most recent n observations")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: an item id or display name is required.")
		return subcommands.ExitUsageError
	}
	arg := strings.Join(f.Args(), " ")

	app, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.resolver.Close()

	var id model.ItemID
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		id = model.ItemID(n)
	} else {
		resolved, err := app.resolver.Resolve(ctx, arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		id = resolved
	}

	var stored model.Ledger
	if err := app.store.ReadJSON(ctx, kv.LedgerKey, &stored); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			fmt.Println("The ledger is empty; run an import first.")
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	history := stored[id]
	if len(history) == 0 {
		fmt.Printf("No recorded prices for item %d.\n", id)
		return subcommands.ExitSuccess
	}
	if c.limit > 0 && len(history) > c.limit {
		history = history[len(history)-c.limit:]
	}

	if name, ok := app.resolver.NameOf(id); ok {
		fmt.Printf("%s (item %d)\n", name, id)
	} else {
		fmt.Printf("item %d\n", id)
	}
	for _, obs := range history {
		fmt.Printf("  %s  %12s  %s\n",
			obs.ObservedAt.Format("2006-01-02 15:04"),
			formatPrice(obs.Price),
			obs.Source,
		)
	}
	return subcommands.ExitSuccess
}
