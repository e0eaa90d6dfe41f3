package decorate

import (
	"strconv"
	"time"
)

// PrettyDateLayout is used for exact date tooltips
const PrettyDateLayout = "January 02, 2006"

const day = 24 * time.Hour

// TimeAgo returns the bucketed distance between date and now: days below 30 days,
// months (days/30) below 365 days, years (days/365) otherwise.
func TimeAgo(date, now time.Time) string {
	days := int(now.Sub(date) / day)
	if days < 0 {
		days = 0
	}
	switch {
	case days < 30:
		return plural(days, "day")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
