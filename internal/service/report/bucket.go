package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
)

// SelectBucket picks the date granularity from the span of [from, to] in days.
func SelectBucket(from, to time.Time) report.Bucket {
	days := to.Sub(from).Hours() / 24
	switch {
	case days <= 31:
		return report.BucketDaily
	case days <= 120:
		return report.BucketWeekly
	case days <= 365:
		return report.BucketMonthly
	default:
		return report.BucketYearly
	}
}

type dateBucket struct {
	ord   int
	label string
}

// bucketOf maps t to its date bucket. Weeks are keyed by ISO year and week so
// the last days of December can fall into week 1 of the following year.
func bucketOf(b report.Bucket, t time.Time) dateBucket {
	y, m, d := t.Date()
	switch b {
	case report.BucketWeekly:
		isoYear, week := t.ISOWeek()
		return dateBucket{ord: isoYear*100 + week, label: fmt.Sprintf("W%d/%d", week, isoYear)}
	case report.BucketMonthly:
		return dateBucket{ord: y*100 + int(m), label: fmt.Sprintf("%d/%d", int(m), y)}
	case report.BucketYearly:
		return dateBucket{ord: y, label: strconv.Itoa(y)}
	default:
		return dateBucket{ord: y*10000 + int(m)*100 + d, label: fmt.Sprintf("%d/%d/%d", d, int(m), y)}
	}
}
