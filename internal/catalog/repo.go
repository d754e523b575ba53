package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrNotEnoughStock means a conditional decrement matched no row:
	// either the product is gone or its stock is below the requested qty.
	ErrNotEnoughStock = errors.New("not enough stock")
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, price, description, image, stock, category, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func (r *Repo) Create(ctx context.Context, np NewProduct) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price, description, image, stock, category)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+productCols,
		uuid.NewString(), np.Name, np.Price, np.Description, np.Image, np.Stock, np.Category,
	)
	return scanProduct(row)
}

func (r *Repo) Update(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE products SET
			name        = COALESCE($2, name),
			price       = COALESCE($3, price),
			description = COALESCE($4, description),
			image       = COALESCE($5, image),
			stock       = COALESCE($6, stock),
			category    = COALESCE($7, category),
			updated_at  = now()
		WHERE id=$1
		RETURNING `+productCols,
		id, patch.Name, patch.Price, patch.Description, patch.Image, patch.Stock, patch.Category,
	)
	return scanProduct(row)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock applies `stock = stock - qty` only while enough stock
// remains. The condition and the write are one statement, so two
// concurrent orders against the same scarce product cannot both pass:
// the second one matches no row and gets ErrNotEnoughStock.
func (r *Repo) DecrementStock(ctx context.Context, id string, qty int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1 AND stock >= $2`,
		id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotEnoughStock
	}
	return nil
}

// IncrementStock gives a reservation back when a later step of the same
// order fails.
func (r *Repo) IncrementStock(ctx context.Context, id string, qty int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`,
		id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
