package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Field is one labelled line of a summary panel.
type Field struct {
	Label string
	Value string
}

// RunSummary renders the title, the fields in order and then the metrics
// sorted by name inside a bordered panel.
func RunSummary(title string, fields []Field, metrics map[string]float64) string {
	lines := []string{Title.Render(title), ""}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for name := range metrics {
		width = max(width, len(name))
	}

	for _, f := range fields {
		lines = append(lines, row(f.Label, MetricValue.Render(f.Value), width))
	}

	if len(metrics) > 0 {
		lines = append(lines, "", HeaderStyle.Render("metrics"))
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := MetricValue.Render(formatFloat(metrics[name]))
			if strings.HasSuffix(name, "_drift") {
				value = DriftBadge(metrics[name])
			}
			lines = append(lines, row(name, value, width))
		}
	}

	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func row(label, value string, width int) string {
	return MetricLabel.Render(fmt.Sprintf("%-*s", width+2, label)) + value
}

// RadiusChart plots distances in km against snapshot index, downsampled to
// at most width points.
func RadiusChart(radii []float64, width, height int, caption string) string {
	if len(radii) == 0 {
		return ""
	}
	return asciigraph.Plot(downsample(radii, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// SpectrumChart plots the low-frequency end of a power spectrum.
func SpectrumChart(ps []float64, bins, height int, caption string) string {
	if len(ps) == 0 {
		return ""
	}
	if bins > 0 && len(ps) > bins {
		ps = ps[:bins]
	}
	return asciigraph.Plot(ps,
		asciigraph.Height(height),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

func downsample(data []float64, width int) []float64 {
	if width <= 0 || len(data) <= width {
		return data
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(width-1)]
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
