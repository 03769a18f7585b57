package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testEmployeeID    = "0190c2a0-0000-7000-8000-000000000001"
	testClientID      = "0190c2a0-0000-7000-8000-0000000000c1"
	testProjectID     = "0190c2a0-0000-7000-8000-0000000000a1"
)

// ===== FAKE SERVICES =====

type fakeActivityService struct {
	activity.ActivityService
	listReq    activity.GetActivitiesRequest
	screenshot activity.CreateScreenshotRequest
	imageBytes []byte
	err        error
}

func (f *fakeActivityService) GetActivities(ctx context.Context, req activity.GetActivitiesRequest) ([]activity.ActivityResponse, error) {
	f.listReq = req
	return []activity.ActivityResponse{}, f.err
}

func (f *fakeActivityService) CreateScreenshot(ctx context.Context, req activity.CreateScreenshotRequest) (activity.ScreenshotResponse, error) {
	f.screenshot = req
	if req.Image != nil {
		f.imageBytes, _ = io.ReadAll(req.Image)
	}
	if f.err != nil {
		return activity.ScreenshotResponse{}, f.err
	}
	return activity.ScreenshotResponse{ID: "shot-1", ActivityID: req.ActivityID}, nil
}

type fakeClientService struct {
	client.ClientService
	created client.CreateClientRequest
	err     error
}

func (f *fakeClientService) CreateClient(ctx context.Context, req client.CreateClientRequest) (client.ClientResponse, error) {
	f.created = req
	if f.err != nil {
		return client.ClientResponse{}, f.err
	}
	return client.ClientResponse{ID: testClientID, Name: req.Name}, nil
}

func (f *fakeClientService) GetClient(ctx context.Context, id string) (client.ClientResponse, error) {
	if f.err != nil {
		return client.ClientResponse{}, f.err
	}
	return client.ClientResponse{ID: id}, nil
}

type fakeProjectService struct {
	project.ProjectService
	removed project.MemberRequest
}

func (f *fakeProjectService) RemoveMember(ctx context.Context, req project.MemberRequest) (project.ProjectResponse, error) {
	f.removed = req
	return project.ProjectResponse{ID: req.ProjectID}, nil
}

type fakeEmployeeService struct {
	employee.EmployeeService
	lastActive *employee.UpdateLastActiveRequest
}

func (f *fakeEmployeeService) UpdateLastActive(ctx context.Context, req employee.UpdateLastActiveRequest) error {
	if _, err := user.CallerFromContext(ctx); err != nil {
		return err
	}
	f.lastActive = &req
	return nil
}

type fakeReportService struct {
	report.ReportService
}

func (f *fakeReportService) GetSavedReport(ctx context.Context, url string) (report.SavedReportDocument, error) {
	if url != "shared-url" {
		return report.SavedReportDocument{}, report.ErrReportNotFound
	}
	return report.SavedReportDocument{Name: "Weekly", URL: url}, nil
}

// ===== HELPERS =====

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	activities *fakeActivityService
	clients    *fakeClientService
	projects   *fakeProjectService
	employees  *fakeEmployeeService
}

func newTestServer() *testServer {
	s := &testServer{
		jwt:        jwt.NewJWTService(handlerTestSecret, "1h"),
		activities: &fakeActivityService{},
		clients:    &fakeClientService{},
		projects:   &fakeProjectService{},
		employees:  &fakeEmployeeService{},
	}
	s.router = NewRouter(
		config.AppConfig{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		s.jwt,
		NewActivityHandler(s.activities),
		NewClientHandler(s.clients),
		NewProjectHandler(s.projects),
		NewEmployeeHandler(s.employees),
		NewReportHandler(&fakeReportService{}),
	)
	return s
}

func (s *testServer) do(t *testing.T, role user.Role, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		token, _, err := s.jwt.GenerateAccessToken(testEmployeeID, "tester@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ===== AUTH & PERMISSIONS =====

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, "", http.MethodGet, "/api/v1/activities", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestRouter_RejectsTokenWithoutAccessType(t *testing.T) {
	s := newTestServer()
	_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{
		"employee_id": testEmployeeID,
		"role":        "admin",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PermissionMiddleware(t *testing.T) {
	s := newTestServer()
	body := map[string]string{"name": "Acme"}

	rec := s.do(t, user.RoleEmployee, http.MethodPost, "/api/v1/clients", jsonBody(t, body), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, s.clients.created.Name)

	rec = s.do(t, user.RoleProjectLeader, http.MethodDelete, "/api/v1/projects/"+testProjectID+"/members/"+testEmployeeID, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, user.RoleEmployee, http.MethodPost, "/api/v1/reports/generate", jsonBody(t, body), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, user.RoleEmployee, http.MethodDelete, "/api/v1/employees/"+testEmployeeID, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ===== CLIENT HANDLER =====

func TestClientHandler_Create(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, user.RoleManager, http.MethodPost, "/api/v1/clients", jsonBody(t, map[string]string{"name": "Acme"}), "application/json")

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Acme", data["name"])
	assert.Equal(t, "Acme", s.clients.created.Name)
}

func TestClientHandler_InvalidBody(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, user.RoleManager, http.MethodPost, "/api/v1/clients", bytes.NewBufferString("{not json"), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientHandler_ErrorMapping(t *testing.T) {
	var verrs validator.ValidationErrors
	verrs.Add("name", "name is required")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", client.ErrClientNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"validation", verrs, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"conflict", client.ErrClientNameExists, http.StatusConflict, "CONFLICT"},
		{"forbidden", user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN"},
		{"storage", activity.ErrStorageUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.clients.err = tt.err

			rec := s.do(t, user.RoleEmployee, http.MethodGet, "/api/v1/clients/"+testClientID, nil, "")

			require.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

// ===== ACTIVITY HANDLER =====

func TestActivityHandler_ListQuery(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, user.RoleEmployee, http.MethodGet, "/api/v1/activities?from=2024-06-01&employee_id="+testEmployeeID, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.activities.listReq.From)
	assert.Equal(t, "2024-06-01", *s.activities.listReq.From)
	assert.Nil(t, s.activities.listReq.To)
	require.NotNil(t, s.activities.listReq.EmployeeID)
	assert.Equal(t, testEmployeeID, *s.activities.listReq.EmployeeID)
}

func TestActivityHandler_ScreenshotMultipart(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", `{"activity_id":"act-1","activity_at":300000,"consume_time":60000}`))
	part, err := mw.CreateFormFile("image", "shot.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := s.do(t, user.RoleEmployee, http.MethodPost, "/api/v1/screenshots", &buf, mw.FormDataContentType())

	require.Equal(t, http.StatusCreated, rec.Code)
	got := s.activities.screenshot
	assert.Equal(t, "act-1", got.ActivityID)
	assert.Equal(t, int64(300000), got.ActivityAt)
	assert.Equal(t, int64(60000), got.ConsumeTime)
	assert.Equal(t, "shot.png", got.ImageFilename)
	assert.Equal(t, []byte("png bytes"), s.activities.imageBytes)
}

func TestActivityHandler_ScreenshotMultipartMissingData(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	rec := s.do(t, user.RoleEmployee, http.MethodPost, "/api/v1/screenshots", &buf, mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ===== PROJECT / EMPLOYEE / REPORT HANDLERS =====

func TestProjectHandler_RemoveMemberParams(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, user.RoleManager, http.MethodDelete, "/api/v1/projects/"+testProjectID+"/members/"+testEmployeeID, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testProjectID, s.projects.removed.ProjectID)
	assert.Equal(t, testEmployeeID, s.projects.removed.EmployeeID)
}

func TestEmployeeHandler_LastActiveEmptyBody(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, user.RoleEmployee, http.MethodPut, "/api/v1/employees/me/last-active", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.employees.lastActive)
	assert.Nil(t, s.employees.lastActive.LastActive)
}

func TestReportHandler_SavedReportIsPublic(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, "", http.MethodGet, "/api/v1/reports/saved/shared-url", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "Weekly", data["name"])

	rec = s.do(t, "", http.MethodGet, "/api/v1/reports/saved/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
