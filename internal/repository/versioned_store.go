package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

var (
	// ErrCollectionMissing is returned by backends when nothing has been stored yet.
	ErrCollectionMissing = errors.New("plan collection missing")
	// ErrVersionMismatch is returned by backends when a compare-and-swap loses.
	ErrVersionMismatch = errors.New("plan collection version mismatch")
	// ErrVersionConflict matches every *ConflictError.
	ErrVersionConflict = errors.New("plan collection version conflict")
	// ErrBlockNotFound reports an unknown block id.
	ErrBlockNotFound = errors.New("plan block not found")
	// ErrInvalidBlock reports a block that fails validation.
	ErrInvalidBlock = errors.New("invalid plan block")
)

// CollectionBackend persists the serialized plan collection with atomic compare-and-swap.
type CollectionBackend interface {
	// Load returns the stored bytes or ErrCollectionMissing.
	Load(ctx context.Context) ([]byte, error)
	// Replace swaps in next only when the stored content has version expected. An empty expected
	// means the collection must not exist yet. A lost race returns ErrVersionMismatch.
	Replace(ctx context.Context, expected string, next []byte) error
}

// ConflictError reports a stale version or a duplicate id and carries the current version.
type ConflictError struct {
	Current   string
	Duplicate bool
	ID        string
}

func (e *ConflictError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("plan block %q already exists", e.ID)
	}
	return fmt.Sprintf("plan collection version conflict (current %s)", e.Current)
}

// Is lets errors.Is match ErrVersionConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// StorageError wraps a backend failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("plan store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Snapshot is the collection at one version.
type Snapshot struct {
	Blocks  []models.PlanBlock `json:"blocks"`
	Version string             `json:"version"`
}

// VersionedStore is the single plan block collection guarded by an optimistic version tag.
type VersionedStore struct {
	backend    CollectionBackend
	validator  *validator.Validate
	logger     *zap.Logger
	maxRetries int
	newID      func() string
}

// NewVersionedStore wires the store over backend. maxRetries bounds how often an unconditional
// write re-reads after losing a race.
func NewVersionedStore(backend CollectionBackend, logger *zap.Logger, maxRetries int) *VersionedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &VersionedStore{
		backend:    backend,
		validator:  validator.New(),
		logger:     logger,
		maxRetries: maxRetries,
		newID:      uuid.NewString,
	}
}

// VersionOf fingerprints serialized collection bytes.
func VersionOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// EncodeBlocks renders blocks in the canonical persisted form.
func EncodeBlocks(blocks []models.PlanBlock) ([]byte, error) {
	if blocks == nil {
		blocks = []models.PlanBlock{}
	}
	content, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(content, '\n'), nil
}

// DecodeBlocks parses persisted collection bytes.
func DecodeBlocks(content []byte) ([]models.PlanBlock, error) {
	blocks := make([]models.PlanBlock, 0)
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// EmptyVersion is the version of a collection holding no blocks.
func EmptyVersion() string {
	content, _ := EncodeBlocks(nil)
	return VersionOf(content)
}

// initialiseAttempts bounds how often Read re-loads after another caller materialised the collection first.
const initialiseAttempts = 5

// Read returns the current snapshot. A missing collection is materialised as empty. Losing the
// materialisation race means the collection now exists, so Read loads again regardless of maxRetries.
func (s *VersionedStore) Read(ctx context.Context) (Snapshot, error) {
	for attempt := 1; ; attempt++ {
		content, err := s.backend.Load(ctx)
		if err == nil {
			blocks, err := DecodeBlocks(content)
			if err != nil {
				return Snapshot{}, &StorageError{Op: "decode", Err: err}
			}
			return Snapshot{Blocks: blocks, Version: VersionOf(content)}, nil
		}
		if !errors.Is(err, ErrCollectionMissing) {
			return Snapshot{}, &StorageError{Op: "load", Err: err}
		}

		empty, _ := EncodeBlocks(nil)
		err = s.backend.Replace(ctx, "", empty)
		switch {
		case err == nil:
			s.logger.Info("plan collection initialised")
			return Snapshot{Blocks: []models.PlanBlock{}, Version: VersionOf(empty)}, nil
		case errors.Is(err, ErrVersionMismatch) && attempt < initialiseAttempts:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Snapshot{}, &StorageError{Op: "initialise", Err: ctxErr}
			}
			s.logger.Debug("plan collection initialised concurrently, reloading")
			continue
		default:
			return Snapshot{}, &StorageError{Op: "initialise", Err: err}
		}
	}
}

// Commit describes one successful write: the snapshot it was applied to and the collection it produced.
type Commit struct {
	Before  []models.PlanBlock
	After   []models.PlanBlock
	Version string
}

// Create appends a block built from draft. An empty draft id is replaced by a fresh uuid.
func (s *VersionedStore) Create(ctx context.Context, draft models.PlanBlockDraft, expected string) (models.PlanBlock, string, error) {
	block, commit, err := s.CommitCreate(ctx, draft, expected)
	return block, commit.Version, err
}

// Update merges patch onto the block with id and validates the merged result before committing.
func (s *VersionedStore) Update(ctx context.Context, id string, patch models.PlanBlockPatch, expected string) (models.PlanBlock, string, error) {
	block, commit, err := s.CommitUpdate(ctx, id, patch, expected)
	return block, commit.Version, err
}

// Delete removes the block with id.
func (s *VersionedStore) Delete(ctx context.Context, id string, expected string) (string, error) {
	commit, err := s.CommitDelete(ctx, id, expected)
	return commit.Version, err
}

// CommitCreate is Create reporting the base snapshot the write was applied to.
func (s *VersionedStore) CommitCreate(ctx context.Context, draft models.PlanBlockDraft, expected string) (models.PlanBlock, Commit, error) {
	var created models.PlanBlock
	commit, err := s.mutate(ctx, expected, func(blocks []models.PlanBlock) ([]models.PlanBlock, error) {
		id := draft.ID
		if id == "" {
			id = s.newID()
		}
		for _, existing := range blocks {
			if existing.ID == id {
				return nil, &ConflictError{Duplicate: true, ID: id}
			}
		}
		created = draft.Block(id)
		if err := s.validate(created); err != nil {
			return nil, err
		}
		return append(blocks, created), nil
	})
	if err != nil {
		return models.PlanBlock{}, Commit{}, err
	}
	return created, commit, nil
}

// CommitUpdate is Update reporting the base snapshot the write was applied to.
func (s *VersionedStore) CommitUpdate(ctx context.Context, id string, patch models.PlanBlockPatch, expected string) (models.PlanBlock, Commit, error) {
	var updated models.PlanBlock
	commit, err := s.mutate(ctx, expected, func(blocks []models.PlanBlock) ([]models.PlanBlock, error) {
		idx := indexOf(blocks, id)
		if idx < 0 {
			return nil, ErrBlockNotFound
		}
		updated = patch.Apply(blocks[idx])
		if err := s.validate(updated); err != nil {
			return nil, err
		}
		blocks[idx] = updated
		return blocks, nil
	})
	if err != nil {
		return models.PlanBlock{}, Commit{}, err
	}
	return updated, commit, nil
}

// CommitDelete is Delete reporting the base snapshot the write was applied to.
func (s *VersionedStore) CommitDelete(ctx context.Context, id string, expected string) (Commit, error) {
	return s.mutate(ctx, expected, func(blocks []models.PlanBlock) ([]models.PlanBlock, error) {
		idx := indexOf(blocks, id)
		if idx < 0 {
			return nil, ErrBlockNotFound
		}
		return append(blocks[:idx], blocks[idx+1:]...), nil
	})
}

// mutate runs one read-modify-write cycle. With an expected version the cycle runs once and a stale
// or lost write becomes a ConflictError. Without one the cycle is retried on a fresh snapshot.
func (s *VersionedStore) mutate(ctx context.Context, expected string, apply func([]models.PlanBlock) ([]models.PlanBlock, error)) (Commit, error) {
	for attempt := 0; ; attempt++ {
		snapshot, err := s.Read(ctx)
		if err != nil {
			return Commit{}, err
		}
		if expected != "" && snapshot.Version != expected {
			return Commit{}, &ConflictError{Current: snapshot.Version}
		}

		next, err := apply(cloneBlocks(snapshot.Blocks))
		if err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				conflict.Current = snapshot.Version
			}
			return Commit{}, err
		}

		content, err := EncodeBlocks(next)
		if err != nil {
			return Commit{}, &StorageError{Op: "encode", Err: err}
		}

		err = s.backend.Replace(ctx, snapshot.Version, content)
		if err == nil {
			return Commit{Before: snapshot.Blocks, After: cloneBlocks(next), Version: VersionOf(content)}, nil
		}
		if !errors.Is(err, ErrVersionMismatch) {
			return Commit{}, &StorageError{Op: "replace", Err: err}
		}

		if expected != "" || attempt >= s.maxRetries {
			current, readErr := s.Read(ctx)
			if readErr != nil {
				return Commit{}, readErr
			}
			return Commit{}, &ConflictError{Current: current.Version}
		}
		s.logger.Debug("plan collection write lost race, retrying", zap.Int("attempt", attempt+1))
	}
}

func (s *VersionedStore) validate(block models.PlanBlock) error {
	if err := s.validator.Struct(block); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return nil
}

func indexOf(blocks []models.PlanBlock, id string) int {
	for i, block := range blocks {
		if block.ID == id {
			return i
		}
	}
	return -1
}

func cloneBlocks(blocks []models.PlanBlock) []models.PlanBlock {
	out := make([]models.PlanBlock, len(blocks))
	copy(out, blocks)
	return out
}
