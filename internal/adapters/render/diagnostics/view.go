package diagnostics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/arcprompt/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

type RenderOptions struct {
	Now time.Time
	// MaxRecords caps the record list to the newest entries. Zero shows all.
	MaxRecords int
}

func renderView(records []domain.FallbackRecord, stats domain.FallbackStats, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Pattern Fallback Diagnostics"),
		s.header.Render(fmt.Sprintf("records: %d", len(records))),
	}

	if len(records) == 0 && stats.Occurrences == 0 {
		lines = append(lines, s.empty.Render("No pattern fallbacks recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(renderStats(stats, s)))
	if len(stats.TopPairs) > 0 {
		lines = append(lines, s.section.Render(renderTopPairs(stats.TopPairs, s)))
	}
	lines = append(lines, s.section.Render(renderRecords(records, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStats(stats domain.FallbackStats, s styles) string {
	row := func(label string, value int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(label+":"), " ", s.value.Render(fmt.Sprintf("%d", value)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		row("retained", stats.Total),
		row("unique pairs", stats.Unique),
		row("occurrences", stats.Occurrences),
		row("last 24h", stats.Last24h),
	)
}

func renderTopPairs(pairs []domain.GenreArc, s styles) string {
	lines := []string{s.title.Render("Top fallback pairs")}

	highest := pairs[0].Count
	for _, pair := range pairs {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.pair.Render(pairLabel(pair.Genre, pair.Arc)),
			" ",
			renderBar(pair.Count, highest, barWidth, s),
			" ",
			s.value.Render(fmt.Sprintf("x%d", pair.Count)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRecords(records []domain.FallbackRecord, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Recent fallbacks")}

	shown := records
	if opts.MaxRecords > 0 && len(shown) > opts.MaxRecords {
		hidden := len(shown) - opts.MaxRecords
		shown = shown[hidden:]
		lines = append(lines, s.empty.Render(fmt.Sprintf("%d older records hidden", hidden)))
	}

	for _, record := range shown {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.pair.Render(pairLabel(record.Genre, record.Arc)),
			" ",
			s.tier.Render("-> "+record.UsedFallback),
			" ",
			s.age.Render("("+formatAge(record.Timestamp, opts.Now)+")"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func pairLabel(genre string, arc domain.Arc) string {
	return fmt.Sprintf("%s/%s", genre, arc)
}

func renderBar(count, highest, width int, s styles) string {
	if width <= 0 || highest <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(count) / float64(highest)))
	if filled < 1 && count > 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
