package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/storage"
)

// staleAfter is how old a transient definition must be before PurgeStale removes it
const staleAfter = time.Hour

type DeliveryConfig struct {
	RendererBaseURL  string
	DefaultRecipient string
	MaxParallel      int
	Retry            retry.Policy
}

type DeliveryServiceImpl struct {
	core     *ReportServiceImpl
	renderer report.Renderer
	mailer   report.Mailer
	cfg      DeliveryConfig
}

func NewDeliveryService(core *ReportServiceImpl, renderer report.Renderer, mailer report.Mailer, cfg DeliveryConfig) report.DeliveryService {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default
	}
	cfg.RendererBaseURL = strings.TrimRight(cfg.RendererBaseURL, "/")
	return &DeliveryServiceImpl{
		core:     core,
		renderer: renderer,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// dueDefinitions filters scheduled definitions down to those firing now
// that have not already run in this hour.
func (s *DeliveryServiceImpl) dueDefinitions(defs []report.Definition, now time.Time) []report.Definition {
	var due []report.Definition
	for _, d := range defs {
		rec, err := report.ParseCron(d.CronString)
		if err != nil {
			slog.Warn("Skipping report with invalid cron string", "id", d.ID, "cron", d.CronString, "error", err)
			continue
		}
		if !rec.IsDue(now) || report.RanThisHour(d.LastRunAt, now) {
			continue
		}
		due = append(due, d)
	}
	return due
}

func (s *DeliveryServiceImpl) RunDue(ctx context.Context) error {
	now := s.core.now().In(s.core.loc)

	defs, err := s.core.definitions.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scheduled reports: %w", err)
	}

	due := s.dueDefinitions(defs, now)
	if len(due) == 0 {
		return nil
	}

	var failed int32
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxParallel)
	for _, d := range due {
		g.Go(func() error {
			if err := s.deliver(ctx, d, now); err != nil {
				atomic.AddInt32(&failed, 1)
				slog.Error("Scheduled report failed", "id", d.ID, "name", d.Name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("Scheduled reports processed", "due", len(due), "failed", atomic.LoadInt32(&failed))
	return nil
}

// deliver runs one definition end to end. The JSON artifact, its transient
// row and the PDF are removed whether or not delivery succeeds.
func (s *DeliveryServiceImpl) deliver(ctx context.Context, d report.Definition, now time.Time) error {
	// claim the hour first so an overlapping run cannot send twice
	if err := s.core.definitions.MarkRun(ctx, d.ID, now); err != nil {
		return fmt.Errorf("failed to mark run: %w", err)
	}

	summary, err := s.core.summarize(ctx, d.Options)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	saved, err := s.core.saveArtifact(ctx, report.Definition{
		OwnerID:              d.OwnerID,
		Name:                 d.Name,
		Options:              d.Options,
		Transient:            true,
		IncludeScreenshots:   d.IncludeScreenshots,
		IncludeActivityLevel: d.IncludeActivityLevel,
		IncludePayRate:       d.IncludePayRate,
		IncludeApps:          d.IncludeApps,
	}, summary)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.core.removeArtifact(cleanupCtx, saved); err != nil {
			slog.Error("Failed to clean up report artifact", "id", saved.ID, "error", err)
		}
	}()

	pageURL := fmt.Sprintf("%s/downloadReportPdf/%s", s.cfg.RendererBaseURL, saved.URL)
	var pdf []byte
	err = retry.Do(ctx, s.cfg.Retry, "render report", func(ctx context.Context) error {
		var rerr error
		pdf, rerr = s.renderer.RenderPDF(ctx, pageURL)
		return rerr
	})
	if err != nil {
		return fmt.Errorf("%w: %v", report.ErrRendererUnavailable, err)
	}

	pdfKey := fmt.Sprintf("%s/%s.pdf", storage.PDFPrefix, uuid.NewString())
	if _, err := storage.PutBytes(ctx, s.core.storage, pdfKey, pdf, "application/pdf"); err != nil {
		return fmt.Errorf("%w: %v", report.ErrArtifactUnavailable, err)
	}
	defer func() {
		if err := s.core.storage.Delete(cleanupCtx, pdfKey); err != nil {
			slog.Error("Failed to delete rendered report", "key", pdfKey, "error", err)
		}
	}()

	to := d.ScheduledMail
	if to == "" {
		to = s.cfg.DefaultRecipient
	}
	if err := s.mailer.SendReport(ctx, to, d.Name, pdf); err != nil {
		return fmt.Errorf("%w: %v", report.ErrMailUnavailable, err)
	}

	slog.Info("Scheduled report delivered", "id", d.ID, "name", d.Name, "to", to)
	return nil
}

func (s *DeliveryServiceImpl) PurgeStale(ctx context.Context) error {
	cutoff := s.core.now().Add(-staleAfter)
	defs, err := s.core.definitions.ListTransientBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale reports: %w", err)
	}

	for _, d := range defs {
		if err := s.core.removeArtifact(ctx, d); err != nil {
			slog.Error("Failed to purge stale report", "id", d.ID, "error", err)
			continue
		}
		slog.Info("Purged stale report", "id", d.ID)
	}
	return nil
}
