package reporting

import (
	"fmt"
	"time"
)

// Granularity selects the defect-trend bucket width.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Weekly, Monthly:
		return Granularity(s), nil
	case "":
		return Daily, nil
	}
	return "", fmt.Errorf("invalid granularity %q (want daily, weekly or monthly)", s)
}

// BucketStart truncates t to the start of its bucket, in UTC. Weekly
// buckets are Monday-aligned.
func BucketStart(g Granularity, t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Weekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		back := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -back)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// bucketAfter returns the start of the bucket following the one containing t.
func bucketAfter(g Granularity, t time.Time) time.Time {
	start := BucketStart(g, t)
	switch g {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Monthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Buckets returns the bucket starts whose buckets intersect the half-open
// range [from, to). The buckets never overlap and their union covers the
// range exactly.
func Buckets(g Granularity, from, to time.Time) []time.Time {
	var starts []time.Time
	for cur := BucketStart(g, from); cur.Before(to); cur = bucketAfter(g, cur) {
		starts = append(starts, cur)
	}
	return starts
}
