package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
)

const (
	noProjectLabel = "No project"
	noClientLabel  = "No client"
	totalLabel     = "Total"
)

// sample is one unit fed to the reducers: an activity, or a screenshot for
// the screenshot views.
type sample struct {
	rec   *report.ActivityRecord
	time  int64
	perf  float64
	title string
}

type groupKey struct {
	id     *string
	label  string
	client *report.Ref
	ord    int
}

func (k groupKey) mapKey() string {
	var b strings.Builder
	if k.id != nil {
		b.WriteString(*k.id)
	}
	b.WriteByte('|')
	b.WriteString(k.label)
	if k.client != nil {
		b.WriteByte('|')
		if k.client.ID != nil {
			b.WriteString(*k.client.ID)
		}
	}
	return b.String()
}

type keyFunc func(s sample) groupKey

type bin struct {
	key     groupKey
	samples []sample
}

// groupSamples partitions samples by key, keeping first-seen sample order inside each bin.
func groupSamples(samples []sample, keyOf keyFunc) []*bin {
	index := make(map[string]*bin)
	var bins []*bin
	for _, s := range samples {
		k := keyOf(s)
		mk := k.mapKey()
		b, ok := index[mk]
		if !ok {
			b = &bin{key: k}
			index[mk] = b
			bins = append(bins, b)
		}
		b.samples = append(b.samples, s)
	}
	return bins
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sortByLabel(bins []*bin) {
	sort.SliceStable(bins, func(i, j int) bool {
		a, b := bins[i].key, bins[j].key
		if a.label != b.label {
			return a.label < b.label
		}
		if ai, bi := derefOr(a.id), derefOr(b.id); ai != bi {
			return ai < bi
		}
		if a.client != nil && b.client != nil {
			if a.client.Name != b.client.Name {
				return a.client.Name < b.client.Name
			}
			return derefOr(a.client.ID) < derefOr(b.client.ID)
		}
		return false
	})
}

func sortByOrd(bins []*bin) {
	sort.SliceStable(bins, func(i, j int) bool { return bins[i].key.ord < bins[j].key.ord })
}

// reduce computes the per-group figures. Count is the number of distinct
// activities; mean performance of an empty group is 0.
func reduce(b *bin, withPay bool) report.Group {
	g := report.Group{
		ID:     b.key.id,
		Label:  b.key.label,
		Client: b.key.client,
	}

	seen := make(map[string]struct{}, len(b.samples))
	var perf float64
	for _, s := range b.samples {
		if _, ok := seen[s.rec.ID]; !ok {
			seen[s.rec.ID] = struct{}{}
		}
		if s.rec.IsInternal {
			g.Internal += s.time
		} else {
			g.External += s.time
		}
		perf += s.perf
	}
	g.Count = len(seen)
	g.Total = g.Internal + g.External
	if n := len(b.samples); n > 0 {
		g.AvgPerformance = perf / float64(n)
	}

	if withPay && len(b.samples) > 0 {
		pay := b.samples[0].rec.PayRate
		g.PayRate = &pay
	}
	return g
}

func reduceAll(bins []*bin, withPay bool) []report.Group {
	groups := make([]report.Group, 0, len(bins))
	for _, b := range bins {
		groups = append(groups, reduce(b, withPay))
	}
	return groups
}

// flat groups samples by one key, ordered by label
func flat(samples []sample, keyOf keyFunc, withPay bool) []report.Group {
	bins := groupSamples(samples, keyOf)
	sortByLabel(bins)
	return reduceAll(bins, withPay)
}

// nested groups by outer, then groups each outer bin by inner into Rows
func nested(samples []sample, outer keyFunc, outerPay bool, inner keyFunc, innerPay bool) []report.Group {
	bins := groupSamples(samples, outer)
	sortByLabel(bins)

	groups := make([]report.Group, 0, len(bins))
	for _, b := range bins {
		g := reduce(b, outerPay)
		innerBins := groupSamples(b.samples, inner)
		sortByLabel(innerBins)
		g.Rows = reduceAll(innerBins, innerPay)
		groups = append(groups, g)
	}
	return groups
}

func projectKey(s sample) groupKey {
	label := s.rec.ProjectName
	if s.rec.ProjectID == nil || label == "" {
		label = noProjectLabel
	}
	return groupKey{id: s.rec.ProjectID, label: label}
}

func clientRef(rec *report.ActivityRecord) *report.Ref {
	name := rec.ClientName
	if rec.ClientID == nil || name == "" {
		name = noClientLabel
	}
	return &report.Ref{ID: rec.ClientID, Name: name}
}

func clientKey(s sample) groupKey {
	ref := clientRef(s.rec)
	return groupKey{id: ref.ID, label: ref.Name}
}

func projectClientKey(s sample) groupKey {
	k := projectKey(s)
	k.client = clientRef(s.rec)
	return k
}

func employeeKey(s sample) groupKey {
	id := s.rec.EmployeeID
	return groupKey{id: &id, label: s.rec.EmployeeName}
}

func titleKey(s sample) groupKey {
	title := s.title
	if title == "" {
		title = activity.DefaultScreenshotTitle
	}
	return groupKey{label: title}
}

func dateKey(b report.Bucket, loc *time.Location) keyFunc {
	return func(s sample) groupKey {
		db := bucketOf(b, s.rec.ActivityOn.In(loc))
		return groupKey{label: db.label, ord: db.ord}
	}
}

// Summarize runs every requested view over the records that pass filter.
// Records are processed in (start time, id) order so the output does not
// depend on the order the store returned them in.
func Summarize(records []report.ActivityRecord, filter report.ActivityFilter, views []report.View, loc *time.Location) report.Summary {
	if loc == nil {
		loc = time.UTC
	}
	if len(views) == 0 {
		views = report.AllViews
	}

	matched := make([]report.ActivityRecord, 0, len(records))
	for _, rec := range records {
		if filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].StartTime != matched[j].StartTime {
			return matched[i].StartTime < matched[j].StartTime
		}
		return matched[i].ID < matched[j].ID
	})

	acts := make([]sample, 0, len(matched))
	var shots []sample
	for i := range matched {
		rec := &matched[i]
		acts = append(acts, sample{rec: rec, time: rec.EndTime - rec.StartTime, perf: rec.Performance})
		for _, sh := range rec.Screenshots {
			shots = append(shots, sample{rec: rec, time: sh.ConsumeTime, perf: sh.Performance, title: sh.Title})
		}
	}

	bucket := SelectBucket(filter.From, filter.SpanEnd())
	summary := report.Summary{From: filter.From, To: filter.To, Bucket: bucket}

	for _, v := range views {
		switch v {
		case report.ViewProjects:
			summary.Projects = flat(acts, projectKey, false)
		case report.ViewClients:
			summary.Clients = flat(acts, clientKey, false)
		case report.ViewEmployees:
			summary.Employees = flat(acts, employeeKey, true)
		case report.ViewScreenshots:
			summary.Screenshots = flat(shots, titleKey, false)
		case report.ViewEmployeeProjects:
			summary.EmployeeProjects = nested(acts, employeeKey, true, projectClientKey, false)
		case report.ViewClientEmployees:
			summary.ClientEmployees = nested(acts, clientKey, false, employeeKey, true)
		case report.ViewProjectEmployees:
			summary.ProjectEmployees = nested(acts, projectClientKey, false, employeeKey, true)
		case report.ViewEmployeeScreenshots:
			summary.EmployeeScreenshots = nested(shots, employeeKey, true, titleKey, false)
		case report.ViewDates:
			bins := groupSamples(acts, dateKey(bucket, loc))
			sortByOrd(bins)
			summary.Dates = reduceAll(bins, false)
		case report.ViewDetails:
			summary.Details = details(matched)
		case report.ViewTotal:
			total := totalGroup(acts)
			summary.Total = &total
		}
	}

	return summary
}

func totalGroup(acts []sample) report.Group {
	g := reduce(&bin{key: groupKey{label: totalLabel}, samples: acts}, false)

	avg := decimal.Zero
	if len(acts) > 0 {
		sum := decimal.Zero
		for _, s := range acts {
			sum = sum.Add(s.rec.PayRate)
		}
		avg = sum.Div(decimal.NewFromInt(int64(len(acts))))
	}
	g.AvgPayRate = &avg
	return g
}

func details(matched []report.ActivityRecord) []report.DetailRow {
	rows := make([]report.DetailRow, 0, len(matched))
	for i := range matched {
		rec := &matched[i]
		project := rec.ProjectName
		if rec.ProjectID == nil || project == "" {
			project = noProjectLabel
		}
		rows = append(rows, report.DetailRow{
			ActivityID:      rec.ID,
			EmployeeID:      rec.EmployeeID,
			EmployeeName:    rec.EmployeeName,
			PayRate:         rec.PayRate,
			ClientName:      clientRef(rec).Name,
			ProjectName:     project,
			Task:            rec.Task,
			StartTime:       rec.StartTime,
			EndTime:         rec.EndTime,
			ConsumeTime:     rec.EndTime - rec.StartTime,
			ActivityOn:      rec.ActivityOn,
			IsInternal:      rec.IsInternal,
			Performance:     rec.Performance,
			ScreenshotCount: len(rec.Screenshots),
		})
	}
	return rows
}
