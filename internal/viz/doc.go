// Package viz renders propagation results for the terminal.
//
// Styling goes through lipgloss and line charts through asciigraph:
//
//   - [RunSummary]: bordered panel with run parameters and metrics
//   - [RadiusChart]: distance of a body from its center over time
//   - [SpectrumChart]: power spectrum of a position component
//   - [SparklineChart]: one-line trend, used for drift comparisons
//   - [DriftBadge]: colored energy drift figure
package viz
