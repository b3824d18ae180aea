package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"relkit/internal/store"
)

var historyLimit int

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	plusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	minusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// historyCmd lists recorded releases.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded releases",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		releases, err := st.History(historyLimit)
		if err != nil {
			return err
		}
		if len(releases) == 0 {
			fmt.Println("no releases recorded yet")
			return nil
		}

		fmt.Println(renderHistoryTable(releases))
		return nil
	},
}

// historyCompareCmd diffs the category counts of two recorded releases.
var historyCompareCmd = &cobra.Command{
	Use:   "compare <from> <to>",
	Short: "Compare two recorded releases",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		delta, err := st.Compare(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(renderDelta(delta))
		return nil
	},
}

func renderHistoryTable(releases []store.Release) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %-12s %6s  %s", "VERSION", "DATE", "PRS", "SOURCE")))
	b.WriteString("\n")
	for _, r := range releases {
		line := fmt.Sprintf("%-16s %-12s %6d  %s", r.Version, r.CreatedAt.Format("2006-01-02"), r.PRCount, r.Source)
		b.WriteString(line)
		if r.PRURL != "" {
			b.WriteString("  " + dimStyle.Render(r.PRURL))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDelta(delta store.Delta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%s -> %s", delta.From.Version, delta.To.Version)))

	titles := make([]string, 0, len(delta.ByTitle))
	for title := range delta.ByTitle {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		n := delta.ByTitle[title]
		switch {
		case n > 0:
			fmt.Fprintf(&b, "  %s %s\n", plusStyle.Render(fmt.Sprintf("+%d", n)), title)
		case n < 0:
			fmt.Fprintf(&b, "  %s %s\n", minusStyle.Render(fmt.Sprintf("%d", n)), title)
		default:
			fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("±0"), title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 = all)")
	historyCmd.AddCommand(historyCompareCmd)
	rootCmd.AddCommand(historyCmd)
}
