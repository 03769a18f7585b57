package report

import "errors"

var (
	ErrInvalidDateRange    = errors.New("end date must not be before start date")
	ErrReportNotFound      = errors.New("report not found")
	ErrFilterNotFound      = errors.New("filter references unknown ids")
	ErrInvalidCronString   = errors.New("invalid cron string")
	ErrArtifactUnavailable = errors.New("report storage unavailable")
	ErrRendererUnavailable = errors.New("report renderer unavailable")
	ErrMailUnavailable     = errors.New("mail service unavailable")
)
