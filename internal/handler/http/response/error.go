package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, activity.ErrNotOwner),
		errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		Forbidden(w, "Cannot delete your own employee record")

	// Activity domain errors
	case errors.Is(err, activity.ErrActivityNotFound):
		NotFound(w, "Activity not found")
	case errors.Is(err, activity.ErrScreenshotNotFound):
		NotFound(w, "Screenshot not found")
	case errors.Is(err, activity.ErrStorageUnavailable):
		ServiceUnavailable(w, "Storage temporarily unavailable")

	// Employee / client / project
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, client.ErrClientNotFound):
		NotFound(w, "Client not found")
	case errors.Is(err, client.ErrClientNameExists):
		Conflict(w, "Client with same name exists")
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, project.ErrProjectNameExists):
		Conflict(w, "Project with same name exists")
	case errors.Is(err, project.ErrMemberExists):
		Conflict(w, "Employee is already a project member")
	case errors.Is(err, project.ErrMemberNotFound):
		NotFound(w, "Employee is not a project member")

	// Report domain errors
	case errors.Is(err, report.ErrReportNotFound):
		NotFound(w, "Report not found")
	case errors.Is(err, report.ErrFilterNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrArtifactUnavailable),
		errors.Is(err, report.ErrRendererUnavailable),
		errors.Is(err, report.ErrMailUnavailable):
		ServiceUnavailable(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
