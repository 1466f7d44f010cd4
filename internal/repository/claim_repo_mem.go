package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// MemClaimRepository is a mutex-guarded in-memory implementation with the
// same atomic contract as the pg repository. Used by tests and local runs
// without a database.
type MemClaimRepository struct {
	mu      sync.Mutex
	claims  map[int64]domain.Claim
	history map[int64][]domain.StatusHistoryEntry
	seq     int64

	// failBeforeHistory, when set, is called after the status write is
	// staged and before the history append. Returning an error must leave
	// neither change visible.
	failBeforeHistory func() error
}

func NewMemClaimRepository() *MemClaimRepository {
	return &MemClaimRepository{
		claims:  make(map[int64]domain.Claim),
		history: make(map[int64][]domain.StatusHistoryEntry),
	}
}

// FailBeforeHistoryAppend installs a fault injected between the status
// write and the history append.
func (r *MemClaimRepository) FailBeforeHistoryAppend(f func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failBeforeHistory = f
}

func (r *MemClaimRepository) InsertWithHistory(_ context.Context, claim *domain.Claim, entry *domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.claims {
		if existing.ClaimNumber == claim.ClaimNumber {
			return domain.ErrClaimNumberTaken
		}
	}

	now := time.Now().UTC()
	claim.CreatedAt = now
	claim.UpdatedAt = now
	r.claims[claim.ID] = *claim
	r.history[claim.ID] = append(r.history[claim.ID], *entry)
	return nil
}

func (r *MemClaimRepository) GetByID(_ context.Context, id int64) (*domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.claims[id]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	return &c, nil
}

func (r *MemClaimRepository) UpdateStatusAndAppendHistory(_ context.Context, claimID int64, from, to domain.ClaimStatus, resolvedAt *time.Time, entry *domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.claims[claimID]
	if !ok {
		return domain.ErrClaimNotFound
	}
	if c.CurrentStatus != from {
		return ErrStatusChanged
	}

	// Stage the status write; nothing is published to the maps until the
	// history append also succeeds.
	staged := c
	staged.CurrentStatus = to
	staged.UpdatedAt = time.Now().UTC()
	if resolvedAt != nil {
		staged.ResolvedAt = resolvedAt
	}

	if r.failBeforeHistory != nil {
		if err := r.failBeforeHistory(); err != nil {
			return err
		}
	}

	r.claims[claimID] = staged
	r.history[claimID] = append(r.history[claimID], *entry)
	return nil
}

func (r *MemClaimRepository) FindHistory(_ context.Context, claimID int64) ([]domain.StatusHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]domain.StatusHistoryEntry, len(r.history[claimID]))
	copy(entries, r.history[claimID])
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
	return entries, nil
}

func (r *MemClaimRepository) NextClaimSequence(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *MemClaimRepository) FindStaleDrafts(_ context.Context, before time.Time) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64
	for id, c := range r.claims {
		if c.CurrentStatus == domain.ClaimStatusDraft && !c.CreatedAt.After(before) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

var _ ClaimRepository = (*MemClaimRepository)(nil)
