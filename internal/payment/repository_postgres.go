package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresRepository keeps the variant in the kind column and its fields as
// JSON in details.
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	methodColumns = `id, user_id, alias, kind, details, is_default, created_at`

	listMethodsQuery  = `SELECT ` + methodColumns + ` FROM payment_methods WHERE user_id = $1 ORDER BY id`
	getMethodQuery    = `SELECT ` + methodColumns + ` FROM payment_methods WHERE user_id = $1 AND id = $2`
	insertMethodQuery = `
		INSERT INTO payment_methods (user_id, alias, kind, details, is_default, created_at)
		VALUES ($1, $2, $3, $4, NOT EXISTS (SELECT 1 FROM payment_methods WHERE user_id = $1), $5)
		RETURNING ` + methodColumns
	deleteMethodQuery       = `DELETE FROM payment_methods WHERE user_id = $1 AND id = $2`
	clearDefaultMethodQuery = `UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`
	markDefaultMethodQuery  = `UPDATE payment_methods SET is_default = TRUE WHERE user_id = $1 AND id = $2 RETURNING ` + methodColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Method, error) {
	rows, err := r.db.QueryContext(ctx, listMethodsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Method, 0)
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int) (Method, error) {
	return oneMethod(r.db.QueryRowContext(ctx, getMethodQuery, userID, id))
}

func (r *PostgresRepository) Create(ctx context.Context, m Method) (Method, error) {
	details, err := json.Marshal(m.Details)
	if err != nil {
		return Method{}, fmt.Errorf("encode payment details: %w", err)
	}
	return oneMethod(r.db.QueryRowContext(ctx, insertMethodQuery,
		m.UserID, m.Alias, string(m.Details.Kind()), string(details), m.CreatedAt,
	))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, deleteMethodQuery, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetDefault(ctx context.Context, userID, id int) (Method, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Method{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, clearDefaultMethodQuery, userID, id); err != nil {
		return Method{}, fmt.Errorf("clear default payment method: %w", err)
	}
	m, err := oneMethod(tx.QueryRowContext(ctx, markDefaultMethodQuery, userID, id))
	if err != nil {
		return Method{}, err
	}
	if err := tx.Commit(); err != nil {
		return Method{}, err
	}
	return m, nil
}

func oneMethod(s rowScanner) (Method, error) {
	m, err := scanMethod(s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Method{}, ErrNotFound
		}
		return Method{}, err
	}
	return m, nil
}

func scanMethod(s rowScanner) (Method, error) {
	var m Method
	var kind, details string
	if err := s.Scan(&m.ID, &m.UserID, &m.Alias, &kind, &details, &m.IsDefault, &m.CreatedAt); err != nil {
		return Method{}, err
	}
	d, err := DecodeDetails(Kind(kind), []byte(details))
	if err != nil {
		return Method{}, err
	}
	m.Details = d
	return m, nil
}
