package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// BranchesRunner prints the local branch tree.
type BranchesRunner struct {
	ctx     context.Context
	opts    *options
	Command *cobra.Command
}

// NewBranchesRunner returns a command runner
func NewBranchesRunner(ctx context.Context, opts *options) *BranchesRunner {
	r := &BranchesRunner{ctx: ctx, opts: opts}
	r.Command = &cobra.Command{
		Use:   "branches",
		Short: "List branches in the local store",
		Args:  cobra.NoArgs,
		RunE:  r.runE,
	}
	return r
}

func (r *BranchesRunner) runE(c *cobra.Command, _ []string) error {
	a, err := r.opts.open()
	if err != nil {
		return err
	}
	defer a.Close()

	branches, err := a.Branches.List(r.ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tPARENT\tBASE\tHEAD")
	for _, b := range branches {
		parent := b.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", b.Path, parent, b.BaseTick, b.HeadTick)
	}
	return w.Flush()
}
