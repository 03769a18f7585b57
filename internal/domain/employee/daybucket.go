package employee

import "time"

// DayDateLayout is the Go layout for DD/MM/YYYY bucket keys.
const DayDateLayout = "02/01/2006"

// FormatDayDate returns the bucket key for t in loc.
func FormatDayDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayDateLayout)
}

// FormatDayDateMillis returns the bucket key for a ms epoch timestamp.
func FormatDayDateMillis(ms int64, loc *time.Location) string {
	return FormatDayDate(time.UnixMilli(ms), loc)
}

// AttachActivity appends activityIDs to the bucket whose Date equals date,
// creating one new bucket at the end when none matches. consumed is added
// to the bucket's daily time. It returns the updated slice and the index of
// the bucket that was touched.
func AttachActivity(days []DayBucket, date string, activityIDs []string, consumed int64) ([]DayBucket, int) {
	for i := range days {
		if days[i].Date == date {
			days[i].ActivityIDs = append(days[i].ActivityIDs, activityIDs...)
			days[i].DailyTime += consumed
			return days, i
		}
	}

	days = append(days, DayBucket{
		Date:        date,
		ActivityIDs: append([]string(nil), activityIDs...),
		DailyTime:   consumed,
	})
	return days, len(days) - 1
}

// DetachActivity removes activityID from every bucket holding it and
// subtracts consumed from those buckets. Daily time never drops below zero.
// It returns the indexes of the buckets that changed.
func DetachActivity(days []DayBucket, activityID string, consumed int64) []int {
	var touched []int
	for i := range days {
		kept := days[i].ActivityIDs[:0]
		removed := false
		for _, id := range days[i].ActivityIDs {
			if id == activityID {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		if !removed {
			continue
		}

		days[i].ActivityIDs = kept
		days[i].DailyTime -= consumed
		if days[i].DailyTime < 0 {
			days[i].DailyTime = 0
		}
		touched = append(touched, i)
	}
	return touched
}
