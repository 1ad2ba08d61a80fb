// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/semantic-bib/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs or unresolved titles from the run journal",
	Long: `History reads the SQLite run journal written by earlier runs. By default
it lists recent runs with their totals; with --missing it lists the titles
that could not be resolved, newest run first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("journal")
	if path == "" {
		return fmt.Errorf("no journal configured: pass --journal or set journal in the config file")
	}
	missing, _ := cmd.Flags().GetBool("missing")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if missing {
		lookups, err := store.Missing(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, lookups)
		}
		return formatMissing(out, lookups)
	}

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}
	return formatRuns(out, runs)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []journal.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tMODE\tTOTAL\tRESOLVED\tMISSING\tINPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Mode,
			r.Total, r.Resolved, r.Missing, truncate(r.Input, 60))
	}
	return tw.Flush()
}

func formatMissing(w io.Writer, lookups []journal.Lookup) error {
	if len(lookups) == 0 {
		_, err := fmt.Fprintln(w, "No unresolved titles.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tTITLE\tAUTHOR")
	for _, l := range lookups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			l.StartedAt.Local().Format(time.DateTime), l.Status,
			truncate(l.Title, 60), l.AuthorHint)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	historyCmd.Flags().Bool("missing", false, "list unresolved titles instead of runs")
	historyCmd.Flags().Int("limit", 20, "maximum number of rows (0 for all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}
