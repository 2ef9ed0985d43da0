package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type resolveCmd struct{}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "resolve a display name to its item id" }
func (*resolveCmd) Usage() string {
	return `tradefury resolve <display name>

  Resolves a name through the persisted cache, reference data and the
  external lookup service, in that order.
`
}

func (*resolveCmd) SetFlags(*flag.FlagSet) {}

func (c *resolveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a display name is required.")
		return subcommands.ExitUsageError
	}
	name := strings.Join(f.Args(), " ")

	app, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.resolver.Close()

	id, err := app.resolver.Resolve(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s -> %d\n", name, id)
	return subcommands.ExitSuccess
}
