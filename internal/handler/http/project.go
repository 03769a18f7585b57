package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProjectHandler interface {
	CreateProject(w http.ResponseWriter, r *http.Request)
	ListProjects(w http.ResponseWriter, r *http.Request)
	GetProject(w http.ResponseWriter, r *http.Request)
	UpdateProject(w http.ResponseWriter, r *http.Request)
	DeleteProject(w http.ResponseWriter, r *http.Request)

	// Members
	AddMember(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)

	GetProjectTime(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	projectService project.ProjectService
}

func NewProjectHandler(projectService project.ProjectService) ProjectHandler {
	return &projectHandlerImpl{
		projectService: projectService,
	}
}

// CreateProject implements ProjectHandler
func (h *projectHandlerImpl) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.projectService.CreateProject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Project created", result)
}

// ListProjects implements ProjectHandler
func (h *projectHandlerImpl) ListProjects(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetProject implements ProjectHandler
func (h *projectHandlerImpl) GetProject(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateProject implements ProjectHandler
func (h *projectHandlerImpl) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.projectService.UpdateProject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Project updated", result)
}

// DeleteProject implements ProjectHandler
func (h *projectHandlerImpl) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Project deleted", nil)
}

// AddMember implements ProjectHandler
func (h *projectHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	var req project.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ProjectID = chi.URLParam(r, "id")

	result, err := h.projectService.AddMember(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member added", result)
}

// RemoveMember implements ProjectHandler
func (h *projectHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	req := project.MemberRequest{
		ProjectID:  chi.URLParam(r, "id"),
		EmployeeID: chi.URLParam(r, "employeeID"),
	}

	result, err := h.projectService.RemoveMember(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member removed", result)
}

// GetProjectTime implements ProjectHandler
func (h *projectHandlerImpl) GetProjectTime(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.GetProjectTime(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
