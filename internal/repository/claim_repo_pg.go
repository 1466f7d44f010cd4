package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// ErrStatusChanged signals that the claim's status moved between the read
// and the compare-and-swap write. Callers re-read and re-validate.
var ErrStatusChanged = errors.New("claim status changed concurrently")

type ClaimRepository interface {
	// InsertWithHistory writes the claim and its initial history entry in
	// one atomic unit.
	InsertWithHistory(ctx context.Context, claim *domain.Claim, entry *domain.StatusHistoryEntry) error
	GetByID(ctx context.Context, id int64) (*domain.Claim, error)
	// UpdateStatusAndAppendHistory applies the status write and the history
	// append atomically, guarded by the expected from-status.
	UpdateStatusAndAppendHistory(ctx context.Context, claimID int64, from, to domain.ClaimStatus, resolvedAt *time.Time, entry *domain.StatusHistoryEntry) error
	FindHistory(ctx context.Context, claimID int64) ([]domain.StatusHistoryEntry, error)
	NextClaimSequence(ctx context.Context) (int64, error)
	FindStaleDrafts(ctx context.Context, before time.Time) ([]int64, error)
}

type PGClaimRepository struct {
	db *pgxpool.Pool
}

func NewClaimRepository(db *pgxpool.Pool) ClaimRepository {
	return &PGClaimRepository{db: db}
}

func (r *PGClaimRepository) InsertWithHistory(ctx context.Context, claim *domain.Claim, entry *domain.StatusHistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO claims
		(id, claim_number, owner_id, current_status, disruption_type, flight_number, flight_date,
		 departure_iata, arrival_iata, airline_name, flight_distance_km,
		 compensation_amount, currency, commission_rate, net_payout_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		claim.ID, claim.ClaimNumber, claim.OwnerID, claim.CurrentStatus, claim.DisruptionType,
		claim.FlightNumber, claim.FlightDate, claim.DepartureIATA, claim.ArrivalIATA, claim.AirlineName,
		claim.FlightDistanceKm, claim.CompensationAmount, claim.Currency, claim.CommissionRate, claim.NetPayoutAmount).
		Scan(&claim.CreatedAt, &claim.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO claim_status_history
		(id, claim_id, from_status, to_status, actor_id, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ClaimID, entry.FromStatus, entry.ToStatus, entry.ActorID, entry.Note, entry.OccurredAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGClaimRepository) GetByID(ctx context.Context, id int64) (*domain.Claim, error) {
	row := r.db.QueryRow(ctx, `SELECT id, claim_number, owner_id, current_status, disruption_type,
		flight_number, flight_date, departure_iata, arrival_iata, airline_name, flight_distance_km,
		compensation_amount, currency, commission_rate, net_payout_amount, resolved_at, created_at, updated_at
		FROM claims WHERE id=$1`, id)
	var c domain.Claim
	if err := row.Scan(&c.ID, &c.ClaimNumber, &c.OwnerID, &c.CurrentStatus, &c.DisruptionType,
		&c.FlightNumber, &c.FlightDate, &c.DepartureIATA, &c.ArrivalIATA, &c.AirlineName, &c.FlightDistanceKm,
		&c.CompensationAmount, &c.Currency, &c.CommissionRate, &c.NetPayoutAmount, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGClaimRepository) UpdateStatusAndAppendHistory(ctx context.Context, claimID int64, from, to domain.ClaimStatus, resolvedAt *time.Time, entry *domain.StatusHistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE claims
		SET current_status=$1, resolved_at=COALESCE($2, resolved_at), updated_at=now()
		WHERE id=$3 AND current_status=$4`, to, resolvedAt, claimID, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE id=$1)`, claimID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrClaimNotFound
		}
		return ErrStatusChanged
	}

	if _, err := tx.Exec(ctx, `INSERT INTO claim_status_history
		(id, claim_id, from_status, to_status, actor_id, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ClaimID, entry.FromStatus, entry.ToStatus, entry.ActorID, entry.Note, entry.OccurredAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGClaimRepository) FindHistory(ctx context.Context, claimID int64) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, claim_id, from_status, to_status, actor_id, note, occurred_at
		FROM claim_status_history WHERE claim_id=$1 ORDER BY occurred_at, id`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.Note, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PGClaimRepository) NextClaimSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('claim_number_seq')`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *PGClaimRepository) FindStaleDrafts(ctx context.Context, before time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM claims WHERE current_status=$1 AND created_at <= $2`,
		domain.ClaimStatusDraft, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ ClaimRepository = (*PGClaimRepository)(nil)
