package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ai4bd/brick/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List compilations recorded in a snapshot archive",
		Long: `List compilations recorded in a snapshot archive, oldest first.

Each row shows the logical sequence number, the compilation ID, the number
of properties and the content hash of the resulting graph. Runs that
produced the same hash compiled to the same graph.

Examples:
  brickc history --db brick.db
  brickc history --db brick.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "snapshot archive path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	s, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, err.Error())
	}
	defer s.Close()

	list, err := s.ListCompilations(cmd.Context())
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, err.Error())
	}

	if formatter.Format == "json" {
		if list == nil {
			list = []store.Compilation{}
		}
		return formatter.Success(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No compilations recorded")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tPROPERTIES\tADVISORIES\tHASH\tSOURCE")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
			c.Seq, c.ID, c.PropertyCount, len(c.Advisories), shortHash(c.SnapshotHash), c.Source)
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
