package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrNoVendorMapping = errors.New("variant has no vendor mapping")
)

// VariantMapping resolves a catalog variant to the vendor-side variant id
// and the print-area geometry used to position the artwork.
type VariantMapping struct {
	VariantRef      int64
	VendorVariantID int64
	AreaWidth       int
	AreaHeight      int
	Top             int
	Left            int
}

// VariantRepository reads the variant-mapping table owned by the catalog
// sync process. This subsystem never writes to it.
type VariantRepository struct {
	db *sql.DB
}

// NewVariantRepository creates a new VariantRepository
func NewVariantRepository(db *sql.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// GetMapping retrieves the vendor mapping for a catalog variant
func (r *VariantRepository) GetMapping(ctx context.Context, variantRef int64) (*VariantMapping, error) {
	query := `
		SELECT variant_ref, vendor_variant_id, print_area_width, print_area_height,
		       print_area_top, print_area_left
		FROM variant_mappings
		WHERE variant_ref = $1
	`

	var (
		m        VariantMapping
		vendorID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, variantRef).Scan(
		&m.VariantRef,
		&vendorID,
		&m.AreaWidth,
		&m.AreaHeight,
		&m.Top,
		&m.Left,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variant mapping: %w", err)
	}

	if !vendorID.Valid || vendorID.Int64 == 0 {
		return nil, ErrNoVendorMapping
	}
	m.VendorVariantID = vendorID.Int64

	return &m, nil
}
