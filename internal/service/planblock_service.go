package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
	"github.com/bbarathsrinivasan/ACMHack/pkg/export"
)

type planStore interface {
	Read(ctx context.Context) (repository.Snapshot, error)
	Create(ctx context.Context, draft models.PlanBlockDraft, expected string) (models.PlanBlock, string, error)
	CommitCreate(ctx context.Context, draft models.PlanBlockDraft, expected string) (models.PlanBlock, repository.Commit, error)
	CommitUpdate(ctx context.Context, id string, patch models.PlanBlockPatch, expected string) (models.PlanBlock, repository.Commit, error)
	CommitDelete(ctx context.Context, id string, expected string) (repository.Commit, error)
}

type profileSource interface {
	Profile(ctx context.Context, userID string) (models.AvailabilityProfile, error)
}

// PlanBlockService handles manual edits of the persisted plan.
type PlanBlockService struct {
	store     planStore
	profiles  profileSource
	auditor   *ChangeAuditor
	metrics   *MetricsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
}

// NewPlanBlockService builds the service. profiles, auditor and metrics may be nil.
func NewPlanBlockService(store planStore, profiles profileSource, auditor *ChangeAuditor, metrics *MetricsService, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *PlanBlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PlanBlockService{
		store:     store,
		profiles:  profiles,
		auditor:   auditor,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		loc:       loc,
	}
}

// List returns the current collection and its version.
func (s *PlanBlockService) List(ctx context.Context) (*dto.PlanBlockList, error) {
	snapshot, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.PlanBlockList{Blocks: snapshot.Blocks, Version: snapshot.Version}, nil
}

// Create adds a block. An empty expected version lets the store retry on a fresh snapshot. The change
// report is diffed against the snapshot the committed write was applied to.
func (s *PlanBlockService) Create(ctx context.Context, userID string, req dto.CreatePlanBlockRequest, expected string) (*dto.PlanBlockMutation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan block payload")
	}

	start := time.Now()
	block, commit, err := s.store.CommitCreate(ctx, req.Draft(), expected)
	s.observe("create", start, err)
	if err != nil {
		return nil, mapStoreError(s.metrics, "create", err)
	}
	return s.finish(ctx, userID, "create", &block, commit), nil
}

// Update merges req onto the block with id.
func (s *PlanBlockService) Update(ctx context.Context, userID, id string, req dto.UpdatePlanBlockRequest, expected string) (*dto.PlanBlockMutation, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan block id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan block payload")
	}
	patch := req.Patch()
	if patch == (models.PlanBlockPatch{}) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	start := time.Now()
	block, commit, err := s.store.CommitUpdate(ctx, id, patch, expected)
	s.observe("update", start, err)
	if err != nil {
		return nil, mapStoreError(s.metrics, "update", err)
	}
	return s.finish(ctx, userID, "update", &block, commit), nil
}

// Delete removes the block with id.
func (s *PlanBlockService) Delete(ctx context.Context, userID, id string, expected string) (*dto.PlanBlockMutation, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan block id is required")
	}

	start := time.Now()
	commit, err := s.store.CommitDelete(ctx, id, expected)
	s.observe("delete", start, err)
	if err != nil {
		return nil, mapStoreError(s.metrics, "delete", err)
	}
	return s.finish(ctx, userID, "delete", nil, commit), nil
}

// Export renders the collection ordered by start.
func (s *PlanBlockService) Export(ctx context.Context, format dto.ExportFormat) (*dto.PlanExport, error) {
	snapshot, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	dataset := planDataset(snapshot.Blocks, s.loc)
	name := "study-plan-" + snapshot.Version[:8]

	switch format {
	case dto.ExportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &dto.PlanExport{Filename: name + ".csv", ContentType: "text/csv", Content: content}, nil
	case dto.ExportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &dto.PlanExport{Filename: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *PlanBlockService) read(ctx context.Context) (repository.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.store.Read(ctx)
	s.observe("read", start, err)
	if err != nil {
		return repository.Snapshot{}, mapStoreError(s.metrics, "read", err)
	}
	return snapshot, nil
}

// finish builds the change report for one committed mutation and hands it to the auditor.
func (s *PlanBlockService) finish(ctx context.Context, userID, op string, block *models.PlanBlock, commit repository.Commit) *dto.PlanBlockMutation {
	capMinutes := s.dailyCap(ctx, userID)
	changes := planner.Diff(commit.Before, commit.After, capMinutes, s.loc)
	s.auditor.Record(ctx, ChangeEntry{
		Source:   "planblocks." + op,
		UserID:   userID,
		Version:  commit.Version,
		Before:   commit.Before,
		After:    commit.After,
		Cap:      capMinutes,
		Location: s.loc,
	})
	return &dto.PlanBlockMutation{Block: block, Version: commit.Version, Changes: changes}
}

func (s *PlanBlockService) dailyCap(ctx context.Context, userID string) int {
	if s.profiles == nil {
		return 0
	}
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		s.logger.Warn("availability unavailable for change report", zap.String("user_id", userID), zap.Error(err))
		return 0
	}
	return profile.MaxMinutesPerDay
}

func (s *PlanBlockService) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if errors.Is(err, repository.ErrVersionConflict) {
			result = "conflict"
		}
	}
	s.metrics.ObserveStoreOperation(op, result, time.Since(start))
}

// mapStoreError converts store failures into HTTP aware errors. Conflicts carry the current version.
func mapStoreError(metrics *MetricsService, op string, err error) error {
	var conflict *repository.ConflictError
	switch {
	case errors.As(err, &conflict):
		base, kind := appErrors.ErrVersionMismatch, "version"
		if conflict.Duplicate {
			base, kind = appErrors.ErrDuplicateID, "duplicate"
		}
		metrics.RecordStoreConflict(op, kind)
		wrapped := appErrors.Wrap(err, base.Code, base.Status, base.Message)
		wrapped = appErrors.WithDetails(wrapped, "version", conflict.Current)
		if conflict.Duplicate {
			wrapped = appErrors.WithDetails(wrapped, "id", conflict.ID)
		}
		return wrapped
	case errors.Is(err, repository.ErrBlockNotFound):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "plan block not found")
	case errors.Is(err, repository.ErrInvalidBlock):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "plan block is invalid")
	default:
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
}

func planDataset(blocks []models.PlanBlock, loc *time.Location) export.Dataset {
	ordered := cloneBlockList(blocks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	data := export.Dataset{
		Title:   "Study plan",
		Headers: []string{"Day", "Start", "End", "Minutes", "Title", "Course", "Assignment", "Location", "Notes"},
	}
	for _, block := range ordered {
		start := block.Start.In(loc)
		data.AddRow(
			start.Format("Mon 2006-01-02"),
			start.Format("15:04"),
			block.End.In(loc).Format("15:04"),
			strconv.Itoa(block.Minutes()),
			block.Title,
			block.CourseID,
			block.RelatedAssignmentID,
			block.Location,
			block.Notes,
		)
	}
	return data
}

func cloneBlockList(blocks []models.PlanBlock) []models.PlanBlock {
	out := make([]models.PlanBlock, len(blocks), len(blocks)+1)
	copy(out, blocks)
	return out
}
