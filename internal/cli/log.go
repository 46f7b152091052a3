package cli

import (
	"github.com/spf13/cobra"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var after int64
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the transaction log",
		Long: `Show committed transactions in sequence order. Rejected instructions are
never logged.

Examples:
  tallybook log
  tallybook log --after 10 --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := rootOpts.formatter(cmd)
			entries, err := s.rt.ReadLog(cmd.Context(), after, limit)
			if err != nil {
				return out.Fail("read log", err)
			}
			return out.Success(logView{Entries: entries})
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "only entries with a higher sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries to show (0 = all)")
	return cmd
}
