package report

import "context"

// Aggregator runs the aggregation engine for other services
type Aggregator interface {
	Aggregate(ctx context.Context, filter ActivityFilter, views []View) (Summary, error)
}

// ReportService defines on-demand report operations
type ReportService interface {
	Aggregator

	GenerateReport(ctx context.Context, req GenerateReportRequest) (Summary, error)
	SaveReport(ctx context.Context, req SaveReportRequest) (DefinitionResponse, error)
	GetSavedReport(ctx context.Context, url string) (SavedReportDocument, error)
	ScheduleReport(ctx context.Context, req ScheduleReportRequest) (DefinitionResponse, error)
	ListReports(ctx context.Context) ([]DefinitionResponse, error)
	DeleteReport(ctx context.Context, id string) error
}

// DeliveryService runs scheduled definitions unattended
type DeliveryService interface {
	// RunDue generates, renders and mails every definition due now
	RunDue(ctx context.Context) error
	// PurgeStale removes transient rows and artifacts left by interrupted runs
	PurgeStale(ctx context.Context) error
}

// Renderer turns a report page into a PDF
type Renderer interface {
	RenderPDF(ctx context.Context, url string) ([]byte, error)
}

// Mailer delivers a rendered report
type Mailer interface {
	SendReport(ctx context.Context, to, reportName string, pdf []byte) error
}
