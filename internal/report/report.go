// Package report renders run results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/abhisek/leadscore/internal/merge"
	"github.com/abhisek/leadscore/internal/priority"
	"github.com/abhisek/leadscore/internal/store"
)

// barWidth is the width of a 100% distribution bar.
const barWidth = 30

// Printer writes styled reports to w.
type Printer struct {
	w  io.Writer
	st styles
}

// New returns a Printer. Colours are used only when color is true.
func New(w io.Writer, color bool) *Printer {
	st := plainStyles()
	if color {
		st = colorStyles()
	}
	return &Printer{w: w, st: st}
}

// Stdout returns a Printer for standard output, coloured when stdout is a
// terminal and NO_COLOR is unset.
func Stdout() *Printer {
	return New(os.Stdout, isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "")
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *Printer) field(label, value string) {
	p.println(p.st.label.Render(fmt.Sprintf("%-14s", label+":")) + " " + p.st.value.Render(value))
}

func (p *Printer) table(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.st.header
			}
			if style != nil {
				return style(row, col).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	p.println(t.String())
}

// Distribution prints the priority tier breakdown.
func (p *Printer) Distribution(d priority.Distribution) {
	p.println(p.st.title.Render("Priority distribution"))

	levels := priority.AllLevels()
	rows := make([][]string, len(levels))
	for i, l := range levels {
		pct := d.Percent(l)
		rows[i] = []string{
			string(l),
			strconv.Itoa(d.Count(l)),
			fmt.Sprintf("%.1f%%", pct),
			strings.Repeat("█", int(pct*barWidth/100+0.5)),
		}
	}
	p.table([]string{"Tier", "Leads", "Share", ""}, rows, func(row, col int) lipgloss.Style {
		if col == 0 || col == 3 {
			return p.st.tier(levels[row])
		}
		return lipgloss.NewStyle()
	})
}

// Summary prints the result of a successful run.
func (p *Printer) Summary(runID string, s *merge.Summary, elapsed time.Duration) {
	p.println(p.st.ok.Render("✓ Predictions saved"))
	if runID != "" {
		p.field("Run", runID)
	}
	p.field("Records", strconv.Itoa(s.Total))
	p.field("Columns", strings.Join(s.Columns, ", "))
	p.field("Output", s.OutputPath)
	p.field("Elapsed", elapsed.Round(time.Millisecond).String())
	p.println("")
	p.Distribution(s.Distribution)
}

// Failure prints a failed run.
func (p *Printer) Failure(runID, stage string, err error) {
	p.println(p.st.failed.Render("✗ Pipeline failed"))
	if runID != "" {
		p.field("Run", runID)
	}
	if stage != "" {
		p.field("Stage", stage)
	}
	p.field("Error", err.Error())
}

// Runs prints the run ledger as a table.
func (p *Printer) Runs(runs []*store.Run) {
	if len(runs) == 0 {
		p.println(p.st.label.Render("No runs recorded yet."))
		return
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			strconv.Itoa(r.Records),
			fmt.Sprintf("%d/%d/%d", r.High, r.Medium, r.Low),
			r.Duration().Round(time.Millisecond).String(),
			r.OutputPath,
		}
	}
	p.table([]string{"ID", "Started", "Status", "Records", "H/M/L", "Took", "Output"}, rows, func(row, col int) lipgloss.Style {
		if col != 2 {
			return lipgloss.NewStyle()
		}
		if runs[row].Status == store.StatusSucceeded {
			return p.st.ok
		}
		return p.st.failed
	})
}

// Run prints one ledger entry in full.
func (p *Printer) Run(r *store.Run) {
	status := p.st.ok
	if r.Status != store.StatusSucceeded {
		status = p.st.failed
	}
	p.println(p.st.title.Render("Run " + r.ID))
	p.println(p.st.label.Render(fmt.Sprintf("%-14s", "Status:")) + " " + status.Render(r.Status))
	p.field("Started", r.StartedAt.Local().Format(time.RFC3339))
	p.field("Took", r.Duration().Round(time.Millisecond).String())
	p.field("Input", r.InputPath)
	p.field("Model", r.ModelPath)
	if r.ModelKind != "" {
		p.field("Model kind", r.ModelKind)
	}
	p.field("Preprocessors", r.PreprocessorDir)
	p.field("Output", r.OutputPath)
	if r.Status != store.StatusSucceeded {
		p.field("Failed stage", r.FailedStage)
		p.field("Error kind", r.ErrorKind)
		p.field("Message", r.Message)
		return
	}
	p.println("")
	d := priority.Distribution{
		Total:  r.Records,
		Counts: map[priority.Level]int{priority.High: r.High, priority.Medium: r.Medium, priority.Low: r.Low},
	}
	p.Distribution(d)
}

// Artifacts prints what the check command found.
func (p *Printer) Artifacts(a ArtifactSummary) {
	p.println(p.st.ok.Render("✓ Artifacts are valid"))
	p.field("Model", a.ModelPath)
	p.field("Model kind", a.ModelKind)
	p.field("Format", a.ModelFormat)
	prob := "yes"
	if !a.Probabilistic {
		prob = "no (scoring will fail)"
	}
	p.field("Probabilities", prob)
	p.field("Encoder", fmt.Sprintf("%s over %s", a.EncoderKind, strings.Join(a.Categorical, ", ")))
	p.field("Features", fmt.Sprintf("%d expected columns", len(a.ExpectedColumns)))
	if a.FeatureNamesMatch != nil {
		match := "yes"
		if !*a.FeatureNamesMatch {
			match = "no"
		}
		p.field("Names match", match)
	}
}

// ArtifactSummary describes a validated preprocessor and model pair.
type ArtifactSummary struct {
	ModelPath     string
	ModelKind     string
	ModelFormat   string
	Probabilistic bool

	EncoderKind     string
	Categorical     []string
	ExpectedColumns []string

	// FeatureNamesMatch is nil when the model records no feature names.
	FeatureNamesMatch *bool
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
