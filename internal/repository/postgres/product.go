package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// DB is the subset of pgxpool.Pool used by the repository. It lets tests
// substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const productColumns = `id, name, slug, description, base_price, price_by_size, on_sale, sale_type, sale_value,
	   stock_by_size, category, sizes, colors, images, is_active, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// jsonColumns holds the marshaled JSONB column values for one product.
type jsonColumns struct {
	priceBySize []byte
	stockBySize []byte
	sizes       []byte
	colors      []byte
	images      []byte
}

func marshalJSONColumns(p *domain.Product) (*jsonColumns, error) {
	if p.PriceBySize == nil {
		p.PriceBySize = map[string]string{}
	}
	if p.StockBySize == nil {
		p.StockBySize = map[string]int{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	var (
		cols jsonColumns
		err  error
	)
	if cols.priceBySize, err = json.Marshal(p.PriceBySize); err != nil {
		return nil, fmt.Errorf("marshal price_by_size: %w", err)
	}
	if cols.stockBySize, err = json.Marshal(p.StockBySize); err != nil {
		return nil, fmt.Errorf("marshal stock_by_size: %w", err)
	}
	if cols.sizes, err = json.Marshal(p.Sizes); err != nil {
		return nil, fmt.Errorf("marshal sizes: %w", err)
	}
	if cols.colors, err = json.Marshal(p.Colors); err != nil {
		return nil, fmt.Errorf("marshal colors: %w", err)
	}
	if cols.images, err = json.Marshal(p.Images); err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return &cols, nil
}

// Create inserts a new product and populates the generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	cols, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (name, slug, description, base_price, price_by_size, on_sale, sale_type, sale_value,
			stock_by_size, category, sizes, colors, images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	err = r.db.QueryRow(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.BasePrice,
		cols.priceBySize,
		p.OnSale,
		p.SaleType,
		p.SaleValue,
		cols.stockBySize,
		p.Category,
		cols.sizes,
		cols.colors,
		cols.images,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1`, productColumns)
	return r.scanProduct(ctx, query, slug)
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.OnSale != nil {
		conditions = append(conditions, fmt.Sprintf("on_sale = $%d", argIndex))
		args = append(args, *filter.OnSale)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var (
			p    domain.Product
			cols jsonColumns
		)

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.BasePrice,
			&cols.priceBySize,
			&p.OnSale,
			&p.SaleType,
			&p.SaleValue,
			&cols.stockBySize,
			&p.Category,
			&cols.sizes,
			&cols.colors,
			&cols.images,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		if err := unmarshalJSONColumns(&p, &cols); err != nil {
			return nil, 0, err
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	cols, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, base_price = $4, price_by_size = $5,
		    on_sale = $6, sale_type = $7, sale_value = $8, stock_by_size = $9, category = $10,
		    sizes = $11, colors = $12, images = $13, is_active = $14, updated_at = $15
		WHERE id = $16`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.BasePrice,
		cols.priceBySize,
		p.OnSale,
		p.SaleType,
		p.SaleValue,
		cols.stockBySize,
		p.Category,
		cols.sizes,
		cols.colors,
		cols.images,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// scanProduct is a helper that executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var (
		p    domain.Product
		cols jsonColumns
	)

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.BasePrice,
		&cols.priceBySize,
		&p.OnSale,
		&p.SaleType,
		&p.SaleValue,
		&cols.stockBySize,
		&p.Category,
		&cols.sizes,
		&cols.colors,
		&cols.images,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := unmarshalJSONColumns(&p, &cols); err != nil {
		return nil, err
	}

	return &p, nil
}

// unmarshalJSONColumns decodes the JSONB columns into the product. NULL
// columns leave zero values in place.
func unmarshalJSONColumns(p *domain.Product, cols *jsonColumns) error {
	if cols.priceBySize != nil {
		if err := json.Unmarshal(cols.priceBySize, &p.PriceBySize); err != nil {
			return fmt.Errorf("unmarshal price_by_size: %w", err)
		}
	}
	if cols.stockBySize != nil {
		if err := json.Unmarshal(cols.stockBySize, &p.StockBySize); err != nil {
			return fmt.Errorf("unmarshal stock_by_size: %w", err)
		}
	}
	if cols.sizes != nil {
		if err := json.Unmarshal(cols.sizes, &p.Sizes); err != nil {
			return fmt.Errorf("unmarshal sizes: %w", err)
		}
	}
	if cols.colors != nil {
		if err := json.Unmarshal(cols.colors, &p.Colors); err != nil {
			return fmt.Errorf("unmarshal colors: %w", err)
		}
	}
	if cols.images != nil {
		if err := json.Unmarshal(cols.images, &p.Images); err != nil {
			return fmt.Errorf("unmarshal images: %w", err)
		}
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
