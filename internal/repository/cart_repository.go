package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-service/internal/domain"
)

// CartRepository encapsulates cart persistence. Every mutation is a single
// statement so concurrent callers never interleave a read-modify-write cycle
// inside this layer.
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	Exists(ctx context.Context, id string) (bool, error)
	ReplaceLines(ctx context.Context, id string, lines []domain.CartLine) error
	// UpsertLine atomically appends a quantity-1 line or increments the
	// existing line for the product.
	UpsertLine(ctx context.Context, cartID, productID string) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	ClearLines(ctx context.Context, cartID string) error
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository instantiates repository.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	const query = `
        INSERT INTO carts DEFAULT VALUES
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const cartQuery = `SELECT id, created_at, updated_at FROM carts WHERE id=$1`

	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, cartQuery, id).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}

	// position preserves insertion order across quantity updates; removals
	// leave a gap which the ordering simply skips.
	const lineQuery = `
        SELECT product_id, quantity
        FROM cart_lines WHERE cart_id=$1
        ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *cartRepository) ReplaceLines(ctx context.Context, id string, lines []domain.CartLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE carts SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id=$1`, id); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cart_lines (cart_id, product_id, quantity) VALUES ($1,$2,$3)`,
			id, line.ProductID, line.Quantity,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *cartRepository) UpsertLine(ctx context.Context, cartID, productID string) error {
	const query = `
        INSERT INTO cart_lines (cart_id, product_id, quantity)
        VALUES ($1, $2, 1)
        ON CONFLICT (cart_id, product_id)
        DO UPDATE SET quantity = cart_lines.quantity + 1`
	_, err := r.pool.Exec(ctx, query, cartID, productID)
	return err
}

func (r *cartRepository) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	const query = `
        INSERT INTO cart_lines (cart_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (cart_id, product_id)
        DO UPDATE SET quantity = EXCLUDED.quantity`
	_, err := r.pool.Exec(ctx, query, cartID, productID, quantity)
	return err
}

func (r *cartRepository) RemoveLine(ctx context.Context, cartID, productID string) error {
	// Removing a line that is not in the cart is a successful no-op.
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id=$1 AND product_id=$2`, cartID, productID)
	return err
}

func (r *cartRepository) ClearLines(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id=$1`, cartID)
	return err
}
