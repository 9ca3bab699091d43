package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
)

// DesignRepository handles PostgreSQL operations for design records.
//
// Status transitions are compare-and-set: every UPDATE carries the expected
// current status in its WHERE clause, so concurrent dispatches and duplicate
// or out-of-order webhooks can never apply a second terminal transition.
type DesignRepository struct {
	pool *pgxpool.Pool
}

// NewDesignRepository creates a new DesignRepository
func NewDesignRepository(pool *pgxpool.Pool) *DesignRepository {
	return &DesignRepository{pool: pool}
}

// GetByID retrieves a design by its ID
func (r *DesignRepository) GetByID(ctx context.Context, id int64) (*domain.Design, error) {
	query := `
		SELECT id, owner, product_ref, variant_ref, source_image_url,
		       rendered_mockup_url, status, created_at, updated_at
		FROM designs
		WHERE id = $1
	`

	var d domain.Design
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Owner,
		&d.ProductRef,
		&d.VariantRef,
		&d.SourceImageURL,
		&d.RenderedMockupURL,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design: %w", err)
	}

	return &d, nil
}

// GetOwner resolves the owner of a design without loading the full record
func (r *DesignRepository) GetOwner(ctx context.Context, id int64) (string, error) {
	var owner string
	err := r.pool.QueryRow(ctx, `SELECT owner FROM designs WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrDesignNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get design owner: %w", err)
	}

	return owner, nil
}

// MarkPending moves a design from draft to pending. The transition is
// conditioned on the current status being draft so a design with a mockup
// task already in flight cannot be dispatched a second time.
func (r *DesignRepository) MarkPending(ctx context.Context, id int64) error {
	query := `
		UPDATE designs
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	tag, err := r.pool.Exec(ctx, query, id, domain.StatusPending, domain.StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to mark design pending: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing design from one that already left draft.
		if _, err := r.GetOwner(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyDispatched
	}

	return nil
}

// MarkReady records the rendered mockup URL and moves the design to ready,
// but only if the current status is pending or draft. Zero rows affected is
// not an error: a replayed or late webhook is a no-op.
func (r *DesignRepository) MarkReady(ctx context.Context, id int64, mockupURL string) (bool, error) {
	query := `
		UPDATE designs
		SET status = $2, rendered_mockup_url = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`

	tag, err := r.pool.Exec(ctx, query, id, domain.StatusReady, mockupURL,
		[]string{domain.StatusPending, domain.StatusDraft})
	if err != nil {
		return false, fmt.Errorf("failed to mark design ready: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkError moves a design to error. Webhook failures only apply from
// pending; dispatch-time failures (allowDraft) may also apply from draft.
func (r *DesignRepository) MarkError(ctx context.Context, id int64, allowDraft bool) (bool, error) {
	from := []string{domain.StatusPending}
	if allowDraft {
		from = append(from, domain.StatusDraft)
	}

	query := `
		UPDATE designs
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`

	tag, err := r.pool.Exec(ctx, query, id, domain.StatusError, from)
	if err != nil {
		return false, fmt.Errorf("failed to mark design errored: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListStalePending returns designs that have sat in pending longer than
// olderThan, oldest first. Used by the sweep job for operator visibility.
func (r *DesignRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*domain.Design, error) {
	query := `
		SELECT id, owner, product_ref, variant_ref, source_image_url,
		       rendered_mockup_url, status, created_at, updated_at
		FROM designs
		WHERE status = $1 AND updated_at < NOW() - $2::interval
		ORDER BY updated_at ASC
	`

	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))
	rows, err := r.pool.Query(ctx, query, domain.StatusPending, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending designs: %w", err)
	}
	defer rows.Close()

	var designs []*domain.Design
	for rows.Next() {
		var d domain.Design
		if err := rows.Scan(
			&d.ID,
			&d.Owner,
			&d.ProductRef,
			&d.VariantRef,
			&d.SourceImageURL,
			&d.RenderedMockupURL,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan design row: %w", err)
		}
		designs = append(designs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read design rows: %w", err)
	}

	return designs, nil
}
