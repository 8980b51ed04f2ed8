package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	billColumns     = `id, user_id, payment_method_id, shipping_address, create_date, subtotal, taxes, total_bill`
	insertBillQuery = `
		INSERT INTO bills (user_id, payment_method_id, shipping_address, subtotal, taxes, total_bill)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, create_date
	`
	insertDetailQuery = `
		INSERT INTO bill_details (bill_id, product_id, product_name, amount, unit_price, subtotal_line, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	getBillQuery         = `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	listBillsByUserQuery = `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1 ORDER BY create_date DESC, id DESC`
	listRecentBillsQuery = `SELECT ` + billColumns + ` FROM bills ORDER BY create_date DESC, id DESC LIMIT $1`
	listDetailsQuery     = `
		SELECT bill_id, product_id, product_name, amount, unit_price, subtotal_line, image_url
		FROM bill_details
		WHERE bill_id = ANY($1)
		ORDER BY bill_id, id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b Bill) (Bill, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Bill{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	err = tx.QueryRowContext(ctx, insertBillQuery,
		b.UserID, b.PaymentMethodID, b.ShippingAddress, b.Subtotal, b.Taxes, b.TotalBill,
	).Scan(&b.ID, &b.CreateDate)
	if err != nil {
		return Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	for _, d := range b.BillDetails {
		if _, err := tx.ExecContext(ctx, insertDetailQuery,
			b.ID, d.ProductID, d.ProductName, d.Amount, d.UnitPrice, d.SubtotalLine, d.ImageURL,
		); err != nil {
			return Bill{}, fmt.Errorf("insert bill detail: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Bill{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (Bill, error) {
	bills, err := r.queryBills(ctx, getBillQuery, id)
	if err != nil {
		return Bill{}, err
	}
	if len(bills) == 0 {
		return Bill{}, ErrNotFound
	}
	return bills[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Bill, error) {
	return r.queryBills(ctx, listBillsByUserQuery, userID)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]Bill, error) {
	return r.queryBills(ctx, listRecentBillsQuery, limit)
}

// queryBills loads the bills matched by q and then all of their details in a
// second query.
func (r *PostgresRepository) queryBills(ctx context.Context, q string, args ...any) ([]Bill, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	bills := make([]Bill, 0)
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.PaymentMethodID, &b.ShippingAddress, &b.CreateDate, &b.Subtotal, &b.Taxes, &b.TotalBill); err != nil {
			rows.Close()
			return nil, err
		}
		b.BillDetails = []BillDetail{}
		bills = append(bills, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return bills, nil
	}

	ids := make([]int, len(bills))
	index := make(map[int]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
		index[b.ID] = i
	}
	drows, err := r.db.QueryContext(ctx, listDetailsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var billID int
		var d BillDetail
		if err := drows.Scan(&billID, &d.ProductID, &d.ProductName, &d.Amount, &d.UnitPrice, &d.SubtotalLine, &d.ImageURL); err != nil {
			return nil, err
		}
		i, ok := index[billID]
		if !ok {
			return nil, errors.New("bill detail for unknown bill")
		}
		bills[i].BillDetails = append(bills[i].BillDetails, d)
	}
	return bills, drows.Err()
}
