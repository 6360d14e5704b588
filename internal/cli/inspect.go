package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sotflame/pkg/trace"
)

const defaultTopEvents = 10

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		top      int
		maxDepth int
		browse   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <trace.json>",
		Short: "Print statistics about a trace",
		Long: `Inspect parses a trace and prints its shape (events, depth, span) together with
the events that spend the most time outside their sub-events. With --browse
the events open in an interactive list instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			t, err := trace.Load(args[0], trace.WithMaxDepth(maxDepth))
			if err != nil {
				return err
			}
			prog.done("Parsed " + args[0])

			if browse {
				_, err := tea.NewProgram(NewEventListModel(t), tea.WithContext(cmd.Context())).Run()
				return err
			}

			printSummary(args[0], trace.Summarize(t))
			fmt.Println()
			fmt.Println(renderHotTable(t, trace.Hottest(t, top)))
			fmt.Println()
			printNextStep("Render it", "sotflame render "+args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", defaultTopEvents, "number of hottest events to list (0 = all)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "reject traces nested deeper than this (default 10000)")
	cmd.Flags().BoolVar(&browse, "browse", false, "browse events interactively")

	return cmd
}

func printSummary(path string, s trace.Summary) {
	fmt.Println(StyleTitle.Render(path))
	printKeyValue("Events", StyleNumber.Render(strconv.Itoa(s.Events)))
	printKeyValue("Leaves", StyleNumber.Render(strconv.Itoa(s.Leaves)))
	printKeyValue("Depth", StyleNumber.Render(strconv.Itoa(s.Depth)))
	printKeyValue("Span", formatTime(s.Span))
	if s.Degenerate > 0 {
		printWarning("%d events cannot be drawn to scale (no usable duration)", s.Degenerate)
	}
}

// renderHotTable lists events with their total and self time and the share
// of the root span each one covers.
func renderHotTable(t *trace.Tree, events []*trace.Event) string {
	span := t.Root.Lasted
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Name,
			strconv.Itoa(e.Level),
			formatTime(e.Lasted),
			formatTime(trace.SelfTime(e)),
			formatShare(trace.SelfTime(e), span),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Event", "Level", "Total", "Self", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == 0 && col == 0 {
				return StyleHot
			}
			if col == 0 {
				return StyleValue
			}
			return StyleDim
		}).
		Render()
}

// formatTime prints a duration in the trace's own units.
func formatTime(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatShare(part, whole float64) string {
	if whole <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*part/whole)
}
