package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bbarathsrinivasan/ACMHack/internal/dto"
	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
	appErrors "github.com/bbarathsrinivasan/ACMHack/pkg/errors"
)

const (
	conflictUnfulfilledLoad = "UNFULFILLED_LOAD"
	conflictInfeasible      = "INFEASIBLE"

	proposalCachePrefix = "planner:proposal:"
)

// PlannerServiceConfig tunes proposal lifetime and apply behaviour.
type PlannerServiceConfig struct {
	Location        *time.Location
	ProposalTTL     time.Duration
	ApplyMaxRetries int
}

// PlannerService turns deliverables into proposals and commits them to the plan store.
type PlannerService struct {
	store      planStore
	profiles   profileSource
	proposals  *proposalStore
	cache      *CacheService
	auditor    *ChangeAuditor
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	loc        *time.Location
	maxRetries int
	now        func() time.Time
}

// NewPlannerService wires the planner. cache, auditor and metrics may be nil.
func NewPlannerService(store planStore, profiles profileSource, cache *CacheService, auditor *ChangeAuditor, metrics *MetricsService, cfg PlannerServiceConfig, validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.ApplyMaxRetries < 0 {
		cfg.ApplyMaxRetries = 0
	}
	return &PlannerService{
		store:      store,
		profiles:   profiles,
		proposals:  newProposalStore(cfg.ProposalTTL),
		cache:      cache,
		auditor:    auditor,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		loc:        cfg.Location,
		maxRetries: cfg.ApplyMaxRetries,
		now:        time.Now,
	}
}

// Generate runs the allocator and keeps the result as a proposal for Apply.
func (s *PlannerService) Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	loc, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}
	now = now.In(loc)

	profile, err := s.profile(ctx, userID, req.Availability)
	if err != nil {
		return nil, err
	}

	var usage map[string]int
	if req.CountExisting {
		snapshot, err := s.store.Read(ctx)
		if err != nil {
			return nil, mapStoreError(s.metrics, "read", err)
		}
		usage = planner.UsageByDay(snapshot.Blocks, loc)
	}

	result := planner.Plan(req.Deliverables, profile, now, usage)
	s.metrics.RecordAllocation(result)

	proposal := planProposal{
		ProposalID:  uuid.NewString(),
		UserID:      userID,
		Now:         now,
		Timezone:    req.Timezone,
		Blocks:      result.Blocks,
		Outcomes:    result.Outcomes,
		Conflicts:   outcomeConflicts(req.Deliverables, result.Outcomes),
		RequestedAt: s.now().UTC(),
	}
	s.proposals.Save(proposal)
	if err := s.cache.Set(ctx, proposalCachePrefix+proposal.ProposalID, proposal, s.proposals.ttl); err != nil {
		s.logger.Warn("proposal cache write failed", zap.String("proposal_id", proposal.ProposalID), zap.Error(err))
	}

	s.logger.Info("plan proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("user_id", userID),
		zap.Int("deliverables", len(req.Deliverables)),
		zap.Int("blocks", len(result.Blocks)),
		zap.Int("conflicts", len(proposal.Conflicts)),
	)

	return &dto.GeneratePlanResponse{
		ProposalID: proposal.ProposalID,
		Now:        now,
		ExpiresAt:  proposal.RequestedAt.Add(s.proposals.ttl),
		Blocks:     proposal.Blocks,
		Outcomes:   proposal.Outcomes,
		Conflicts:  proposal.Conflicts,
	}, nil
}

// Apply persists proposal or explicit drafts one at a time, following the version forward after
// every write, then reports what changed.
func (s *PlannerService) Apply(ctx context.Context, userID string, req dto.ApplyPlanRequest) (*dto.ApplyPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply payload")
	}
	drafts, timezone := req.Blocks, req.Timezone
	if req.ProposalID != "" {
		proposal, ok := s.lookupProposal(ctx, userID, req.ProposalID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
		}
		drafts = proposal.Blocks
		if timezone == "" {
			timezone = proposal.Timezone
		}
	}
	if len(drafts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to apply")
	}
	loc, err := s.location(timezone)
	if err != nil {
		return nil, err
	}

	before, err := s.store.Read(ctx)
	if err != nil {
		return nil, mapStoreError(s.metrics, "read", err)
	}
	if req.Version != "" && req.Version != before.Version {
		s.metrics.RecordStoreConflict("apply", "version")
		return nil, appErrors.WithDetails(appErrors.ErrVersionMismatch, "version", before.Version)
	}

	tag := before.Version
	retries := 0
	created := make([]models.PlanBlock, 0, len(drafts))
	for _, draft := range drafts {
		for {
			start := time.Now()
			block, next, err := s.store.Create(ctx, draft, tag)
			if err == nil {
				s.metrics.ObserveStoreOperation("create", "ok", time.Since(start))
				created = append(created, block)
				tag = next
				break
			}
			var conflict *repository.ConflictError
			if errors.As(err, &conflict) && !conflict.Duplicate && retries < s.maxRetries {
				s.metrics.ObserveStoreOperation("create", "conflict", time.Since(start))
				s.metrics.RecordStoreConflict("apply", "version")
				retries++
				tag = conflict.Current
				s.logger.Debug("apply refreshed version", zap.Int("retry", retries), zap.String("version", tag))
				continue
			}
			s.metrics.ObserveStoreOperation("create", "error", time.Since(start))
			mapped := appErrors.FromError(mapStoreError(s.metrics, "apply", err))
			return nil, appErrors.WithDetails(mapped, "created", len(created))
		}
	}

	after, err := s.store.Read(ctx)
	if err != nil {
		return nil, mapStoreError(s.metrics, "read", err)
	}
	capMinutes := 0
	if profile, err := s.profile(ctx, userID, nil); err == nil {
		capMinutes = profile.MaxMinutesPerDay
	}
	changes := planner.Diff(before.Blocks, after.Blocks, capMinutes, loc)

	if req.ProposalID != "" {
		s.proposals.Delete(req.ProposalID)
		if err := s.cache.Delete(ctx, proposalCachePrefix+req.ProposalID); err != nil {
			s.logger.Warn("proposal cache delete failed", zap.String("proposal_id", req.ProposalID), zap.Error(err))
		}
	}
	s.auditor.Record(ctx, ChangeEntry{
		Source:   "planner.apply",
		UserID:   userID,
		Version:  after.Version,
		Before:   before.Blocks,
		After:    after.Blocks,
		Cap:      capMinutes,
		Location: loc,
	})

	return &dto.ApplyPlanResponse{
		Created: created,
		Version: after.Version,
		Retries: retries,
		Changes: changes,
		Summary: planner.Summarize(changes),
	}, nil
}

// Diff compares two snapshots. A missing New side is read from the store.
func (s *PlannerService) Diff(ctx context.Context, userID string, req dto.DiffPlanRequest) (*dto.DiffPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid diff payload")
	}
	loc, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}

	capMinutes := 0
	if req.CapMinutesPerDay != nil {
		capMinutes = *req.CapMinutesPerDay
	} else {
		profile, err := s.profile(ctx, userID, nil)
		if err != nil {
			return nil, err
		}
		capMinutes = profile.MaxMinutesPerDay
	}

	resp := &dto.DiffPlanResponse{}
	next := req.New
	if next == nil {
		snapshot, err := s.store.Read(ctx)
		if err != nil {
			return nil, mapStoreError(s.metrics, "read", err)
		}
		next = snapshot.Blocks
		resp.Version = snapshot.Version
	}

	resp.Days = planner.Diff(req.Old, next, capMinutes, loc)
	resp.Summary = planner.Summarize(resp.Days)
	return resp, nil
}

func (s *PlannerService) location(name string) (*time.Location, error) {
	if name == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("unknown timezone %q", name))
	}
	return loc, nil
}

func (s *PlannerService) profile(ctx context.Context, userID string, override *models.AvailabilityProfile) (models.AvailabilityProfile, error) {
	if override != nil {
		return *override, nil
	}
	if s.profiles == nil {
		return models.DefaultAvailability(), nil
	}
	return s.profiles.Profile(ctx, userID)
}

func (s *PlannerService) lookupProposal(ctx context.Context, userID, id string) (planProposal, bool) {
	proposal, ok := s.proposals.Get(id)
	if !ok {
		var cached planProposal
		hit, err := s.cache.Get(ctx, proposalCachePrefix+id, &cached)
		if err != nil || !hit {
			return planProposal{}, false
		}
		proposal = cached
		s.proposals.Save(proposal)
	}
	if proposal.UserID != userID {
		return planProposal{}, false
	}
	return proposal, true
}

// outcomeConflicts reports deliverables the allocator could not fully place.
func outcomeConflicts(deliverables []models.Deliverable, outcomes []planner.Outcome) []dto.ProposalConflict {
	titles := make(map[string]string, len(deliverables))
	for _, d := range deliverables {
		titles[d.ID] = d.Title
	}
	conflicts := make([]dto.ProposalConflict, 0)
	for _, outcome := range outcomes {
		meta := map[string]any{
			"deliverableId":    outcome.DeliverableID,
			"bufferedMinutes":  outcome.BufferedMinutes,
			"scheduledMinutes": outcome.ScheduledMinutes,
		}
		switch outcome.Status {
		case planner.OutcomeInfeasible:
			message := fmt.Sprintf("%q is due too soon to schedule", titles[outcome.DeliverableID])
			if outcome.LatestEnd != nil {
				meta["latestEnd"] = *outcome.LatestEnd
				message = fmt.Sprintf("%q has no free availability before %s", titles[outcome.DeliverableID], outcome.LatestEnd.Format(time.RFC3339))
			}
			conflicts = append(conflicts, dto.ProposalConflict{
				Type:    conflictInfeasible,
				Message: message,
				Meta:    meta,
			})
		case planner.OutcomePartial:
			conflicts = append(conflicts, dto.ProposalConflict{
				Type:    conflictUnfulfilledLoad,
				Message: fmt.Sprintf("%q is short %d minutes", titles[outcome.DeliverableID], outcome.BufferedMinutes-outcome.ScheduledMinutes),
				Meta:    meta,
			})
		}
	}
	return conflicts
}

type planProposal struct {
	ProposalID  string                  `json:"proposalId"`
	UserID      string                  `json:"userId"`
	Now         time.Time               `json:"now"`
	Timezone    string                  `json:"timezone,omitempty"`
	Blocks      []models.PlanBlockDraft `json:"blocks"`
	Outcomes    []planner.Outcome       `json:"outcomes"`
	Conflicts   []dto.ProposalConflict  `json:"conflicts"`
	RequestedAt time.Time               `json:"requestedAt"`
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]planProposal),
	}
}

func (s *proposalStore) Save(proposal planProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (planProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return planProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
