package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `id, name, description, category, price, image_url, score`

	listProductsQuery      = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	getProductByIDQuery    = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	listProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`
	insertProductQuery     = `
		INSERT INTO products (name, description, category, price, image_url, score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			category = $3,
			price = $4,
			image_url = $5,
			score = $6
		WHERE id = $7
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, listProductsQuery)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, listProductsByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.Description, p.Category, p.Price, p.ImageURL, p.Score,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	res, err := r.db.ExecContext(ctx, updateProductQuery,
		p.Name, p.Description, p.Category, p.Price, p.ImageURL, p.Score, id,
	)
	if err != nil {
		return Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(s rowScanner) (Product, error) {
	var p Product
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.ImageURL, &p.Score); err != nil {
		return Product{}, err
	}
	return p, nil
}
