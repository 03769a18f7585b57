package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	reader       report.ActivityReader
	definitions  report.DefinitionRepository
	employeeRepo employee.EmployeeRepository
	projectRepo  project.ProjectRepository
	clientRepo   client.ClientRepository
	storage      storage.FileStorage
	loc          *time.Location
	now          func() time.Time
}

func NewReportService(
	reader report.ActivityReader,
	definitions report.DefinitionRepository,
	employeeRepo employee.EmployeeRepository,
	projectRepo project.ProjectRepository,
	clientRepo client.ClientRepository,
	fileStorage storage.FileStorage,
	loc *time.Location,
) *ReportServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		reader:       reader,
		definitions:  definitions,
		employeeRepo: employeeRepo,
		projectRepo:  projectRepo,
		clientRepo:   clientRepo,
		storage:      fileStorage,
		loc:          loc,
		now:          time.Now,
	}
}

var _ report.ReportService = (*ReportServiceImpl)(nil)

// resolveFilter turns saved options into an engine filter. A missing start
// means the Unix epoch, a missing end means now, and a date-only end covers
// that whole day.
func (s *ReportServiceImpl) resolveFilter(ctx context.Context, opts report.Options) (report.ActivityFilter, error) {
	filter := report.ActivityFilter{
		EmployeeIDs: opts.EmployeeIDs,
		ProjectIDs:  opts.ProjectIDs,
		ClientIDs:   opts.ClientIDs,
		From:        time.Unix(0, 0).In(s.loc),
		To:          s.now().In(s.loc),
	}

	var errs validator.ValidationErrors
	if opts.DateOne != nil {
		t, ok := validator.ParseFlexibleDate(*opts.DateOne, s.loc)
		if !ok {
			errs.Add("date_one", "invalid date_one")
		}
		filter.From = t
	}
	if opts.DateTwo != nil {
		t, ok := validator.ParseFlexibleDate(*opts.DateTwo, s.loc)
		if !ok {
			errs.Add("date_two", "invalid date_two")
		}
		if !strings.Contains(*opts.DateTwo, "T") {
			t = t.Add(24*time.Hour - time.Millisecond)
			filter.WholeDayTo = true
		}
		filter.To = t
	}
	if len(errs) == 0 && filter.To.Before(filter.From) {
		errs.Add("date_two", report.ErrInvalidDateRange.Error())
	}
	if err := errs.Err(); err != nil {
		return report.ActivityFilter{}, err
	}

	if err := s.checkFilterIDs(ctx, filter); err != nil {
		return report.ActivityFilter{}, err
	}
	return filter, nil
}

func (s *ReportServiceImpl) checkFilterIDs(ctx context.Context, f report.ActivityFilter) error {
	checks := []struct {
		kind    string
		ids     []string
		missing func(context.Context, []string) ([]string, error)
	}{
		{"employees", f.EmployeeIDs, s.employeeRepo.MissingIDs},
		{"projects", f.ProjectIDs, s.projectRepo.MissingIDs},
		{"clients", f.ClientIDs, s.clientRepo.MissingIDs},
	}

	for _, c := range checks {
		if len(c.ids) == 0 {
			continue
		}
		missing, err := c.missing(ctx, c.ids)
		if err != nil {
			return fmt.Errorf("failed to check %s filter: %w", c.kind, err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s %s", report.ErrFilterNotFound, c.kind, strings.Join(missing, ", "))
		}
	}
	return nil
}

// Aggregate loads the activities matching filter and summarizes them.
func (s *ReportServiceImpl) Aggregate(ctx context.Context, filter report.ActivityFilter, views []report.View) (report.Summary, error) {
	records, err := s.reader.ListRecords(ctx, filter)
	if err != nil {
		return report.Summary{}, fmt.Errorf("failed to load activities: %w", err)
	}
	return Summarize(records, filter, views, s.loc), nil
}

func (s *ReportServiceImpl) summarize(ctx context.Context, opts report.Options) (report.Summary, error) {
	filter, err := s.resolveFilter(ctx, opts)
	if err != nil {
		return report.Summary{}, err
	}
	return s.Aggregate(ctx, filter, opts.Views)
}

func (s *ReportServiceImpl) GenerateReport(ctx context.Context, req report.GenerateReportRequest) (report.Summary, error) {
	if err := req.Validate(); err != nil {
		return report.Summary{}, err
	}
	return s.summarize(ctx, req.Options)
}

// saveArtifact writes summary as JSON and creates the shared definition pointing at it.
func (s *ReportServiceImpl) saveArtifact(ctx context.Context, def report.Definition, summary report.Summary) (report.Definition, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return report.Definition{}, fmt.Errorf("failed to encode summary: %w", err)
	}

	fileName := fmt.Sprintf("%s-%d-%s", def.OwnerID, s.now().UnixMilli(), uuid.NewString()[:8])
	key := report.ArtifactKey(fileName)
	if _, err := storage.PutBytes(ctx, s.storage, key, data, "application/json"); err != nil {
		return report.Definition{}, fmt.Errorf("%w: %v", report.ErrArtifactUnavailable, err)
	}

	def.URL = uuid.NewString()
	def.FileName = &fileName
	def.Share = true
	def.Schedule = false

	saved, err := s.definitions.Create(ctx, def)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Error("Failed to remove orphan report artifact", "key", key, "error", delErr)
		}
		return report.Definition{}, fmt.Errorf("failed to save report: %w", err)
	}
	return saved, nil
}

// removeArtifact deletes the definition row and its JSON artifact.
func (s *ReportServiceImpl) removeArtifact(ctx context.Context, def report.Definition) error {
	var errs []error
	if def.FileName != nil {
		if err := s.storage.Delete(ctx, report.ArtifactKey(*def.FileName)); err != nil {
			errs = append(errs, fmt.Errorf("delete artifact: %w", err))
		}
	}
	if err := s.definitions.Delete(ctx, def.ID); err != nil && !errors.Is(err, report.ErrReportNotFound) {
		errs = append(errs, fmt.Errorf("delete definition: %w", err))
	}
	return errors.Join(errs...)
}

func (s *ReportServiceImpl) defaultName(ctx context.Context, name, ownerID string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	owner, err := s.employeeRepo.GetByID(ctx, ownerID)
	if err != nil {
		return "Report"
	}
	return owner.FullName()
}

func (s *ReportServiceImpl) SaveReport(ctx context.Context, req report.SaveReportRequest) (report.DefinitionResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return report.DefinitionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return report.DefinitionResponse{}, err
	}

	summary, err := s.summarize(ctx, req.Options)
	if err != nil {
		return report.DefinitionResponse{}, err
	}

	saved, err := s.saveArtifact(ctx, report.Definition{
		OwnerID:              caller.EmployeeID,
		Name:                 s.defaultName(ctx, req.Name, caller.EmployeeID),
		Options:              req.Options,
		IncludeScreenshots:   req.Screenshots,
		IncludeActivityLevel: req.ActivityLevel,
		IncludePayRate:       req.PayRate,
		IncludeApps:          req.Apps,
	}, summary)
	if err != nil {
		return report.DefinitionResponse{}, err
	}

	slog.Info("Report saved", "id", saved.ID, "url", saved.URL, "owner", caller.EmployeeID)
	return report.ToDefinitionResponse(saved), nil
}

// GetSavedReport is public: the report page fetches it by url.
func (s *ReportServiceImpl) GetSavedReport(ctx context.Context, url string) (report.SavedReportDocument, error) {
	if uuid.Validate(url) != nil {
		return report.SavedReportDocument{}, report.ErrReportNotFound
	}

	def, err := s.definitions.GetByURL(ctx, url)
	if err != nil {
		return report.SavedReportDocument{}, err
	}
	if !def.Share || def.FileName == nil {
		return report.SavedReportDocument{}, report.ErrReportNotFound
	}

	data, err := storage.ReadAll(ctx, s.storage, report.ArtifactKey(*def.FileName))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return report.SavedReportDocument{}, report.ErrReportNotFound
		}
		return report.SavedReportDocument{}, fmt.Errorf("%w: %v", report.ErrArtifactUnavailable, err)
	}

	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return report.SavedReportDocument{}, fmt.Errorf("failed to decode saved report: %w", err)
	}

	return report.SavedReportDocument{
		Name:    def.Name,
		URL:     def.URL,
		Options: def.Options,
		IncludeFlags: report.IncludeFlags{
			Screenshots:   def.IncludeScreenshots,
			ActivityLevel: def.IncludeActivityLevel,
			PayRate:       def.IncludePayRate,
			Apps:          def.IncludeApps,
		},
		Summary: summary,
	}, nil
}

func (s *ReportServiceImpl) ScheduleReport(ctx context.Context, req report.ScheduleReportRequest) (report.DefinitionResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return report.DefinitionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return report.DefinitionResponse{}, err
	}
	if _, err := s.resolveFilter(ctx, req.Options); err != nil {
		return report.DefinitionResponse{}, err
	}

	scheduleType := req.ScheduleType
	if scheduleType != nil && scheduleType.Anchor == "" {
		st := *scheduleType
		switch st.Kind {
		case report.ScheduleWeekly:
			st.Anchor = "Monday"
		case report.ScheduleMonthly:
			st.Anchor = "1"
		}
		scheduleType = &st
	}

	def, err := s.definitions.Create(ctx, report.Definition{
		OwnerID:              caller.EmployeeID,
		Name:                 req.Name,
		Options:              req.Options,
		Schedule:             true,
		CronString:           req.ResolveCron(),
		ScheduleType:         scheduleType,
		ScheduledMail:        req.ScheduledMail,
		URL:                  uuid.NewString(),
		IncludeScreenshots:   req.Screenshots,
		IncludeActivityLevel: req.ActivityLevel,
		IncludePayRate:       req.PayRate,
		IncludeApps:          req.Apps,
	})
	if err != nil {
		return report.DefinitionResponse{}, fmt.Errorf("failed to schedule report: %w", err)
	}

	slog.Info("Report scheduled", "id", def.ID, "cron", def.CronString, "owner", caller.EmployeeID)
	return report.ToDefinitionResponse(def), nil
}

func (s *ReportServiceImpl) ListReports(ctx context.Context) ([]report.DefinitionResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	defs, err := s.definitions.ListByOwner(ctx, caller.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]report.DefinitionResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, report.ToDefinitionResponse(d))
	}
	return out, nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, id string) error {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	def, err := s.definitions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if def.OwnerID != caller.EmployeeID && caller.Role != user.RoleAdmin {
		return user.ErrInsufficientPermissions
	}

	if err := s.removeArtifact(ctx, def); err != nil {
		return fmt.Errorf("%w: %v", report.ErrArtifactUnavailable, err)
	}
	slog.Info("Report deleted", "id", id, "by", caller.EmployeeID)
	return nil
}
