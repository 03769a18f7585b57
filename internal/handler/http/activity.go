package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ActivityHandler interface {
	CreateActivity(w http.ResponseWriter, r *http.Request)
	ListActivities(w http.ResponseWriter, r *http.Request)
	UpdateActivity(w http.ResponseWriter, r *http.Request)
	DeleteActivity(w http.ResponseWriter, r *http.Request)
	SplitActivity(w http.ResponseWriter, r *http.Request)
	CreateScreenshot(w http.ResponseWriter, r *http.Request)
	DeleteScreenshots(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityService activity.ActivityService
}

func NewActivityHandler(activityService activity.ActivityService) ActivityHandler {
	return &activityHandlerImpl{
		activityService: activityService,
	}
}

// CreateActivity implements ActivityHandler
func (h *activityHandlerImpl) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activity.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.activityService.CreateActivity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Activity created", result)
}

// ListActivities implements ActivityHandler
func (h *activityHandlerImpl) ListActivities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := activity.GetActivitiesRequest{
		EmployeeID: queryPtr(query.Get("employee_id")),
		From:       queryPtr(query.Get("from")),
		To:         queryPtr(query.Get("to")),
	}

	result, err := h.activityService.GetActivities(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateActivity implements ActivityHandler
func (h *activityHandlerImpl) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req activity.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.activityService.UpdateActivity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Activity updated", result)
}

// DeleteActivity implements ActivityHandler
func (h *activityHandlerImpl) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Activity ID is required", nil)
		return
	}

	if err := h.activityService.DeleteActivity(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Activity deleted", nil)
}

// SplitActivity implements ActivityHandler
func (h *activityHandlerImpl) SplitActivity(w http.ResponseWriter, r *http.Request) {
	var req activity.SplitActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.activityService.SplitActivity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateScreenshot implements ActivityHandler. Accepts JSON, or multipart
// form data with the request in field 'data' and an optional 'image' file.
func (h *activityHandlerImpl) CreateScreenshot(w http.ResponseWriter, r *http.Request) {
	var req activity.CreateScreenshotRequest

	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		// Parse multipart form (max 10MB)
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}

		dataJSON := r.FormValue("data")
		if dataJSON == "" {
			response.BadRequest(w, "Field 'data' is required", nil)
			return
		}
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("Failed to unmarshal JSON data", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			req.Image = file
			req.ImageFilename = header.Filename
			req.ImageContentType = header.Header.Get("Content-Type")
		} else if err != http.ErrMissingFile {
			response.BadRequest(w, "Failed to read image", nil)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.activityService.CreateScreenshot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Screenshot created", result)
}

// DeleteScreenshots implements ActivityHandler
func (h *activityHandlerImpl) DeleteScreenshots(w http.ResponseWriter, r *http.Request) {
	var req activity.DeleteScreenshotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.activityService.DeleteScreenshots(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Screenshots deleted", nil)
}

func queryPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
