package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/identity"
	"github.com/abgdnv/gocatalog/internal/query"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const productColumns = `id, seller_id, name, brand, price, quantity, category, free_shipping, description, image, created_at, updated_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// MigratePostgres applies the embedded schema migrations to the database at url.
func MigratePostgres(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Create inserts a product under a fresh key.
func (p *PgStore) Create(ctx context.Context, product Product) (*Product, error) {
	product.ID = identity.NewKey()
	product.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	product.UpdatedAt = product.CreatedAt

	_, err := p.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		product.ID, product.SellerID, product.Name, product.Brand, product.Price, product.Quantity,
		product.Category, product.FreeShipping, product.Description, product.Image,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// FindOne retrieves a product by its key.
// Returns ErrProductNotFound if no product exists with the given key.
func (p *PgStore) FindOne(ctx context.Context, id string) (*Product, error) {
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// DeleteOne removes a product by its key.
// Returns ErrProductNotFound if nothing was deleted.
func (p *PgStore) DeleteOne(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// FindPage selects one page of products in key order.
func (p *PgStore) FindPage(ctx context.Context, q query.PageQuery) ([]Product, error) {
	sql, args := pageSQL(q)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// Ping checks the connection pool.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// pageSQL renders a page query with positional arguments.
func pageSQL(q query.PageQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.Filter.SellerID != "" {
		args = append(args, q.Filter.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if q.Filter.Category != "" {
		args = append(args, q.Filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + productColumns + ` FROM products`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, q.Limit, q.Skip)
	b.WriteString(fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)-1, len(args)))
	return b.String(), args
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var product Product
	err := row.Scan(
		&product.ID, &product.SellerID, &product.Name, &product.Brand, &product.Price, &product.Quantity,
		&product.Category, &product.FreeShipping, &product.Description, &product.Image,
		&product.CreatedAt, &product.UpdatedAt,
	)
	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()
	return product, err
}
