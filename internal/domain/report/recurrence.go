package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Recurrence is a parsed standard cron string (m h dom mon dow).
type Recurrence struct {
	cal *cron.SpecSchedule
}

// ParseCron parses a five-field cron string. Lists, ranges, steps and names
// are accepted; 7 is read as Sunday.
func ParseCron(s string) (Recurrence, error) {
	fields := strings.Fields(s)
	if len(fields) == 5 && fields[4] == "7" {
		fields[4] = "0"
	}

	parsed, err := cron.ParseStandard(strings.Join(fields, " "))
	if err != nil {
		return Recurrence{}, fmt.Errorf("%w: %v", ErrInvalidCronString, err)
	}
	cal, ok := parsed.(*cron.SpecSchedule)
	if !ok {
		return Recurrence{}, fmt.Errorf("%w: %q is not a calendar schedule", ErrInvalidCronString, s)
	}
	return Recurrence{cal: cal}, nil
}

// IsDue reports whether the recurrence fires in the hour containing now.
// The minute field is ignored. Hour, month, day of month and weekday must all
// match, so a schedule with both day fields set needs both to hold.
func (r Recurrence) IsDue(now time.Time) bool {
	if r.cal == nil {
		return false
	}
	return bitSet(r.cal.Hour, now.Hour()) &&
		bitSet(r.cal.Month, int(now.Month())) &&
		bitSet(r.cal.Dom, now.Day()) &&
		bitSet(r.cal.Dow, int(now.Weekday()))
}

func bitSet(mask uint64, n int) bool {
	return mask&(1<<uint(n)) != 0
}

// RanThisHour reports whether lastRun falls in the same clock hour as now.
func RanThisHour(lastRun *time.Time, now time.Time) bool {
	if lastRun == nil {
		return false
	}
	last := lastRun.In(now.Location())
	return last.Year() == now.Year() && last.YearDay() == now.YearDay() && last.Hour() == now.Hour()
}

var weekdays = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

// CronString builds the cron string for a schedule type firing at hour.
// Weekly defaults to Monday and Monthly to the 1st when no anchor is given.
func (st ScheduleType) CronString(hour int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour %d", ErrInvalidCronString, hour)
	}

	switch st.Kind {
	case ScheduleDaily:
		return fmt.Sprintf("0 %d * * *", hour), nil
	case ScheduleWeekly:
		anchor := strings.ToLower(strings.TrimSpace(st.Anchor))
		if anchor == "" {
			anchor = "monday"
		}
		day, ok := weekdays[anchor]
		if !ok {
			return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidCronString, st.Anchor)
		}
		return fmt.Sprintf("0 %d * * %d", hour, day), nil
	case ScheduleMonthly:
		day := 1
		if st.Anchor != "" {
			n, err := strconv.Atoi(st.Anchor)
			if err != nil || n < 1 || n > 31 {
				return "", fmt.Errorf("%w: day of month %q", ErrInvalidCronString, st.Anchor)
			}
			day = n
		}
		return fmt.Sprintf("0 %d %d * *", hour, day), nil
	}
	return "", fmt.Errorf("%w: unknown schedule type %q", ErrInvalidCronString, st.Kind)
}
