package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
)

// ReportJobs contains report delivery cron jobs
type ReportJobs struct {
	deliveryService report.DeliveryService
	interval        time.Duration
}

// NewReportJobs creates report cron jobs ticking every interval
func NewReportJobs(deliveryService report.DeliveryService, interval time.Duration) *ReportJobs {
	return &ReportJobs{
		deliveryService: deliveryService,
		interval:        interval,
	}
}

// RegisterJobs registers all report-related cron jobs
func (j *ReportJobs) RegisterJobs(scheduler *Scheduler) {
	// Send due scheduled reports
	scheduler.AddJob(
		"deliver_scheduled_reports",
		j.interval,
		j.DeliverScheduledReports,
	)

	// Remove artifacts left behind by interrupted deliveries
	scheduler.AddJob(
		"purge_stale_report_artifacts",
		1*time.Hour,
		j.PurgeStaleArtifacts,
	)
}

func (j *ReportJobs) DeliverScheduledReports(ctx context.Context) error {
	return j.deliveryService.RunDue(ctx)
}

func (j *ReportJobs) PurgeStaleArtifacts(ctx context.Context) error {
	return j.deliveryService.PurgeStale(ctx)
}
