// Package truncate bounds input collections and strings before they are
// rendered into prompts. Pure truncation, no relevance ranking.
package truncate

// Limits applied before prompt rendering.
const (
	MaxTicketsAnalyze    = 50
	MaxTicketsSuggest    = 20
	MaxStories           = 20
	MaxTicketSubject     = 120
	MaxTicketDescription = 240
	MaxStorySummary      = 200
)

// Items returns the first n elements in their original order.
func Items[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// Clip returns the first n characters of s.
func Clip(s string, n int) string {
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
