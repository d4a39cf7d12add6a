package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tensorplex-labs/simrank/internal/ranking"
)

const maxBarWidth = 50

// PlotRankingTerminal draws result as a horizontal bar chart, most similar
// candidate first. Bars are scaled between the lowest and highest score.
func PlotRankingTerminal(w io.Writer, result ranking.RankedResult, title string) error {
	if len(result) == 0 {
		_, err := fmt.Fprintf(w, "\n%s: no candidates\n", title)
		return err
	}

	// Ranked results are descending, so the extremes sit at both ends
	maxScore := result[0].Score
	minScore := result[len(result)-1].Score

	idWidth := len("Candidate")
	for _, m := range result {
		idWidth = max(idWidth, utf8.RuneCountInString(m.ID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s (Terminal Plot - Descending Order):\n", title)
	fmt.Fprintf(&b, "Rank | %-*s | Score     | Bar Chart\n", idWidth, "Candidate")
	fmt.Fprintf(&b, "-----|-%s-|-----------|%s\n", strings.Repeat("-", idWidth), strings.Repeat("-", maxBarWidth))

	for i, m := range result {
		// Normalize score to bar width
		var barWidth int
		if maxScore != minScore {
			barWidth = int((m.Score - minScore) / (maxScore - minScore) * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(&b, "%4d | %-*s | %9.6f | %s\n", i+1, idWidth, m.ID, m.Score, bar)
	}

	fmt.Fprintf(&b, "\nScale: Min=%.6f, Max=%.6f\n", minScore, maxScore)
	fmt.Fprintf(&b, "Bar width represents relative score (0 to %d chars)\n", maxBarWidth)

	_, err := io.WriteString(w, b.String())
	return err
}
