package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"respirate-server/internal/classify"
)

var (
	colorGood     = lipgloss.Color("#22C55E")
	colorModerate = lipgloss.Color("#EAB308")
	colorWarning  = lipgloss.Color("#F97316")
	colorCritical = lipgloss.Color("#EF4444")
	colorMuted    = lipgloss.Color("#888888")
	colorBorder   = lipgloss.Color("#444444")
)

type styles struct {
	header lipgloss.Style
	muted  lipgloss.Style
	value  lipgloss.Style
	tiers  map[classify.Tier]lipgloss.Style
}

// newStyles binds styles to w so colors are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder),
		muted: r.NewStyle().Foreground(colorMuted),
		value: r.NewStyle().Bold(true),
		tiers: map[classify.Tier]lipgloss.Style{
			classify.TierGood:     r.NewStyle().Foreground(colorGood),
			classify.TierModerate: r.NewStyle().Foreground(colorModerate),
			classify.TierWarning:  r.NewStyle().Foreground(colorWarning).Bold(true),
			classify.TierCritical: r.NewStyle().Foreground(colorCritical).Bold(true),
		},
	}
}

func (s styles) tier(t classify.Tier) lipgloss.Style {
	if st, ok := s.tiers[t]; ok {
		return st
	}
	return s.muted
}
