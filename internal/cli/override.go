package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/DominusFuror/tradefury/internal/domain/model"
)

type overrideCmd struct{}

func (*overrideCmd) Name() string     { return "override" }
func (*overrideCmd) Synopsis() string { return "force-assign a display name to an item id" }
func (*overrideCmd) Usage() string {
	return `tradefury override <item-id> <display name>

  Manually maps a display name to an item id, reporting any mapping the
  override displaced.
`
}

func (*overrideCmd) SetFlags(*flag.FlagSet) {}

func (c *overrideCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: an item id and a display name are required.")
		return subcommands.ExitUsageError
	}
	rawID := f.Arg(0)
	name := strings.Join(f.Args()[1:], " ")

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %q is not a numeric item id.\n", rawID)
		return subcommands.ExitUsageError
	}

	app, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rep, err := app.resolver.SetOverride(ctx, model.ItemID(id), name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Item %d is now %q.\n", id, name)
	if rep.PreviousName != "" {
		fmt.Printf("  previously named %q\n", rep.PreviousName)
	}
	if rep.PreviousOwnerID != 0 {
		fmt.Printf("  name was previously owned by item %d\n", rep.PreviousOwnerID)
	}
	return subcommands.ExitSuccess
}
