package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed OrderStore.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, total, status, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.UserID, o.Total, string(o.Status), o.CreatedAt)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, unit_price)
			VALUES ($1,$2,$3,$4)`,
			o.ID, it.ProductID, it.Qty, it.UnitPrice)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, total, status, created_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]OrderWithUser, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.user_id, o.total, o.status, o.created_at, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderWithUser
	for rows.Next() {
		var o OrderWithUser
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UserName, &o.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plain := make([]Order, len(out))
	for i := range out {
		plain[i] = out[i].Order
	}
	if err := r.attachItems(ctx, plain); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = plain[i].Items
	}
	return out, nil
}

// attachItems loads line items for the given orders in one query.
func (r *Repo) attachItems(ctx context.Context, os []Order) error {
	if len(os) == 0 {
		return nil
	}
	ids := make([]string, 0, len(os))
	byID := make(map[string]*Order, len(os))
	for i := range os {
		ids = append(ids, os[i].ID)
		byID[os[i].ID] = &os[i]
	}
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, qty, unit_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Qty, &it.UnitPrice); err != nil {
			return err
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) (*Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1
		RETURNING id, user_id, total, status, created_at`, id, string(s))
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	one := []Order{o}
	if err := r.attachItems(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, string, error) {
	var s, userID string
	err := r.DB.QueryRow(ctx, `SELECT status, user_id FROM orders WHERE id=$1`, id).Scan(&s, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrOrderNotFound
	}
	if err != nil {
		return "", "", err
	}
	return Status(s), userID, nil
}
