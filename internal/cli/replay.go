package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rpggio/authoring-mirror/internal/domain/mirror"
	"github.com/spf13/cobra"
)

// ReplayRunner replays activity log files in order.
type ReplayRunner struct {
	ctx     context.Context
	opts    *options
	Command *cobra.Command
	origin  string
}

// NewReplayRunner returns a command runner
func NewReplayRunner(ctx context.Context, opts *options) *ReplayRunner {
	r := &ReplayRunner{ctx: ctx, opts: opts}
	c := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Replay activity logs; '-' reads stdin",
		Long: `Replay one or more activity logs in the order given. Each log may be
plain text, gzip or zstd. Replay stops at the first failing line; the
activities before it stay applied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.runE,
	}
	c.Flags().StringVar(&r.origin, "origin", "cli", "Origin recorded in the journal for replayed activities.")
	r.Command = c
	return r
}

func (r *ReplayRunner) runE(c *cobra.Command, args []string) error {
	a, err := r.opts.open()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := mirror.WithOrigin(r.ctx, r.origin)
	for _, path := range args {
		sum, err := r.replay(ctx, a.Mirror, path, c.InOrStdin())
		if err != nil {
			return fmt.Errorf("%w (%d activities applied)", err, sum.Activities)
		}
		fmt.Fprintf(c.OutOrStdout(), "%s: %d lines, %d activities (%d content, %d merges, %d unrecognized)\n",
			path, sum.Lines, sum.Activities, sum.ContentChanges, sum.BranchOperations, sum.Unrecognized)
	}
	return nil
}

func (r *ReplayRunner) replay(ctx context.Context, svc *mirror.Service, path string, stdin io.Reader) (mirror.Summary, error) {
	if path != "-" {
		return svc.ReceiveActivityFile(ctx, path)
	}
	stream, err := mirror.Decompress(stdin)
	if err != nil {
		return mirror.Summary{}, err
	}
	defer stream.Close()

	sum, err := svc.ReceiveActivityLog(ctx, stream)
	if err != nil {
		return sum, fmt.Errorf("stdin: %w", err)
	}
	return sum, nil
}
