package report

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/leadscore/internal/priority"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// tierColors maps each priority level to its colour.
var tierColors = map[priority.Level]color.Color{
	priority.High:   Success,
	priority.Medium: Warning,
	priority.Low:    TextDim,
}

// styles is the set of styles a Printer renders with. The plain set has no
// colours so output written to files and pipes stays clean.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
	border lipgloss.Style
	header lipgloss.Style
	tier   func(priority.Level) lipgloss.Style
}

func colorStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(Primary),
		label:  lipgloss.NewStyle().Foreground(TextDim),
		value:  lipgloss.NewStyle().Bold(true),
		ok:     lipgloss.NewStyle().Foreground(Success).Bold(true),
		failed: lipgloss.NewStyle().Foreground(Error).Bold(true),
		border: lipgloss.NewStyle().Foreground(Border),
		header: lipgloss.NewStyle().Foreground(Primary).Bold(true).Padding(0, 1),
		tier: func(l priority.Level) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(tierColors[l]).Bold(l == priority.High)
		},
	}
}

func plainStyles() styles {
	plain := lipgloss.NewStyle()
	return styles{
		title:  plain,
		label:  plain,
		value:  plain,
		ok:     plain,
		failed: plain,
		border: plain,
		header: plain.Padding(0, 1),
		tier:   func(priority.Level) lipgloss.Style { return plain },
	}
}
