package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/coabot/internal/history"
)

var (
	historyLimit    int
	historyJSONFlag bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSONFlag, "json", false, "Output records as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List processed mentions",
	Long: `Display the most recent processed notifications, newest first.

Shows the repository and issue, the outcome, publish attempts, and the pull
request URL when one was opened.`,
	Example: `  coabot history
  coabot history -n 50
  coabot history --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger := newLedger(appConfig)
		if ledger == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "History is disabled (history.enabled = false).")
			return nil
		}

		records, err := ledger.List(historyLimit)
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}

		if historyJSONFlag {
			if records == nil {
				records = []history.Record{}
			}
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No processed mentions yet.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderHistory(records))
		return nil
	},
}

func renderHistory(records []history.Record) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	failedStyle := cellStyle.Foreground(lipgloss.Color("9"))

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		target := r.Repo
		if r.Issue > 0 {
			target += "#" + strconv.Itoa(r.Issue)
		}
		detail := r.PRURL
		if detail == "" {
			detail = truncate(r.Error, 60)
		}
		attempts := "-"
		if r.Attempts > 0 {
			attempts = strconv.Itoa(r.Attempts)
		}
		rows = append(rows, []string{
			r.FinishedAt.Local().Format(time.DateTime),
			target,
			r.Outcome,
			attempts,
			detail,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FINISHED", "ISSUE", "OUTCOME", "ATTEMPTS", "PR / ERROR").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(records) {
				switch records[row].Outcome {
				case history.OutcomeExhausted, history.OutcomeWorkspaceFailed:
					return failedStyle
				}
			}
			return cellStyle
		})
	return t.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
