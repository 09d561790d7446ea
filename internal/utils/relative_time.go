package utils

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders the distance between t and now in French, the
// way timestamps are shown next to posts.
func FormatRelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < time.Minute {
		return "à l'instant"
	}
	if elapsed < time.Hour {
		return pluralAgo(int(elapsed/time.Minute), "minute")
	}
	if elapsed < 24*time.Hour {
		return pluralAgo(int(elapsed/time.Hour), "heure")
	}
	if elapsed < 30*24*time.Hour {
		return pluralAgo(int(elapsed/(24*time.Hour)), "jour")
	}
	return "le " + t.Format("02/01/2006")
}

func pluralAgo(n int, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("il y a %d %s", n, unit)
}
