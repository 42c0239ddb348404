package cli

import (
	"fmt"
	"io"

	"TrendBoard/internal/domain/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// emaDisplayPlaces is the rounding applied to EMA columns in the terminal.
const emaDisplayPlaces = 8

var headers = []string{"Symbol", "Price", "EMA fast", "EMA slow", "EMA slowest", "Trend"}

// RenderTable writes the view as a colour-coded table followed by a legend.
// Colours follow the writer's terminal profile, so plain files get no
// escape codes.
func RenderTable(w io.Writer, v *models.ScreenView) error {
	r := lipgloss.NewRenderer(w)
	var (
		headerStyle = r.NewStyle().Bold(true).Padding(0, 1)
		cellStyle   = r.NewStyle().Padding(0, 1)
		longStyle   = cellStyle.Foreground(lipgloss.Color("2"))
		shortStyle  = cellStyle.Foreground(lipgloss.Color("1"))
		mutedStyle  = r.NewStyle().Faint(true)
	)

	rows := make([][]string, 0, len(v.Rows))
	for _, s := range v.Rows {
		rows = append(rows, []string{
			s.Instrument.String(),
			s.LastPrice.String(),
			s.EmaFast.Round(emaDisplayPlaces).String(),
			s.EmaSlow.Round(emaDisplayPlaces).String(),
			s.EmaSlowest.Round(emaDisplayPlaces).String(),
			string(s.Trend),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(v.Rows) {
				return cellStyle
			}
			if v.Rows[row].Trend == models.TrendLong {
				return longStyle
			}
			return shortStyle
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d shown · %d instruments · %d failed · interval %s · run %s",
		v.Total, v.Requested, v.Failed, v.Interval, v.RunID)
	if v.MinPrice != "" || v.MaxPrice != "" {
		summary += fmt.Sprintf(" · price [%s, %s]", orDefault(v.MinPrice, "0"), orDefault(v.MaxPrice, "∞"))
	}
	legend := longStyle.Render("LONG: EMA fast above EMA slow") + "  " +
		shortStyle.Render("SHORT: EMA fast at or below EMA slow")

	_, err := fmt.Fprintf(w, "%s\n%s\n", mutedStyle.Render(summary), legend)
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
