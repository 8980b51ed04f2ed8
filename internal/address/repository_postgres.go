package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository stores addresses in the addresses table; at most one
// row per user has is_default set (enforced by a partial unique index).
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	addressColumns = `id, user_id, line, neighborhood_id, neighborhood_name, locality_id, locality_name,
		additional_info, delivery_notes, place_type, is_default, created_at, updated_at`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, line, neighborhood_id, neighborhood_name, locality_id, locality_name,
			additional_info, delivery_notes, place_type, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1), $10, $10)
		RETURNING ` + addressColumns
	updateAddressQuery = `
		UPDATE addresses
		SET line = $3, neighborhood_id = $4, neighborhood_name = $5, locality_id = $6, locality_name = $7,
			additional_info = $8, delivery_notes = $9, place_type = $10, updated_at = $11
		WHERE user_id = $1 AND id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery  = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
	clearDefaultQuery   = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`
	markDefaultQuery    = `UPDATE addresses SET is_default = TRUE WHERE user_id = $1 AND id = $2 RETURNING ` + addressColumns
	listLocalitiesQuery = `SELECT id, name FROM localities ORDER BY name`
	getLocalityQuery    = `SELECT id, name FROM localities WHERE id = $1`
	listNeighborhoods   = `SELECT id, locality_id, name FROM neighborhoods WHERE locality_id = $1 ORDER BY name`
	getNeighborhood     = `SELECT id, locality_id, name FROM neighborhoods WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, addressID int) (Address, error) {
	return oneAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, addressID))
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	return oneAddress(r.db.QueryRowContext(ctx, insertAddressQuery,
		a.UserID, a.Line, a.NeighborhoodID, a.NeighborhoodName, a.LocalityID, a.LocalityName,
		a.AdditionalInfo, a.DeliveryNotes, string(a.PlaceType), a.CreatedAt,
	))
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	return oneAddress(r.db.QueryRowContext(ctx, updateAddressQuery,
		a.UserID, a.AddressID, a.Line, a.NeighborhoodID, a.NeighborhoodName, a.LocalityID, a.LocalityName,
		a.AdditionalInfo, a.DeliveryNotes, string(a.PlaceType), a.UpdatedAt,
	))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, addressID int) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetDefault(ctx context.Context, userID, addressID int) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, clearDefaultQuery, userID, addressID); err != nil {
		return Address{}, fmt.Errorf("clear default address: %w", err)
	}
	a, err := oneAddress(tx.QueryRowContext(ctx, markDefaultQuery, userID, addressID))
	if err != nil {
		return Address{}, err
	}
	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Localities(ctx context.Context) ([]Locality, error) {
	rows, err := r.db.QueryContext(ctx, listLocalitiesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Locality, 0)
	for rows.Next() {
		var l Locality
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Neighborhoods(ctx context.Context, localityID int) ([]Neighborhood, error) {
	rows, err := r.db.QueryContext(ctx, listNeighborhoods, localityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Neighborhood, 0)
	for rows.Next() {
		var n Neighborhood
		if err := rows.Scan(&n.ID, &n.LocalityID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Locality(ctx context.Context, id int) (Locality, error) {
	var l Locality
	if err := r.db.QueryRowContext(ctx, getLocalityQuery, id).Scan(&l.ID, &l.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Locality{}, ErrUnknownLocality
		}
		return Locality{}, err
	}
	return l, nil
}

func (r *PostgresRepository) Neighborhood(ctx context.Context, id int) (Neighborhood, error) {
	var n Neighborhood
	if err := r.db.QueryRowContext(ctx, getNeighborhood, id).Scan(&n.ID, &n.LocalityID, &n.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Neighborhood{}, ErrNeighborhoodMismatch
		}
		return Neighborhood{}, err
	}
	return n, nil
}

func oneAddress(s rowScanner) (Address, error) {
	a, err := scanAddress(s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}

func scanAddress(s rowScanner) (Address, error) {
	var a Address
	var place string
	err := s.Scan(&a.AddressID, &a.UserID, &a.Line, &a.NeighborhoodID, &a.NeighborhoodName, &a.LocalityID, &a.LocalityName,
		&a.AdditionalInfo, &a.DeliveryNotes, &place, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	a.PlaceType = PlaceType(place)
	return a, nil
}
