package eventservices

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// WriteEntropyReport renders the run as a table. Only the last limit points
// are shown; limit <= 0 shows all of them.
func WriteEntropyReport(w io.Writer, result *EntropyPipelineResult, limit int) {
	p := message.NewPrinter(language.English)
	run := result.Run

	fmt.Fprintf(w, "Entropy run %s\n", run.ID)
	p.Fprintf(w, "Quotes: %d, skewness dates: %d, skipped dates: %d, windows: %d\n",
		result.QuoteCount, len(result.Skewness.Points), len(result.Skewness.Skipped), len(run.Points))
	fmt.Fprintf(w, "DTE band: (%d, %d), window: %d, step: %d, m: %d, r: %.6f\n",
		run.MinDte, run.MaxDte, run.WindowWidth, run.SlidingStep, run.EmbeddingDim, run.Tolerance)

	points := run.Points
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Entropy", "Skewness"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, pt := range points {
		table.Append([]string{
			pt.Date.Format(eventmodels.DateLayout),
			p.Sprintf("%.6f", pt.Entropy),
			p.Sprintf("%.4f", pt.Skewness),
		})
	}

	table.Render()
}
