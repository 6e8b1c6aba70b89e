package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/port"
)

type ProductRepository struct {
	db *sql.DB
}

var _ port.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, brand, category, base_price, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Brand, nullString(p.Category), p.BasePrice, p.Description,
		p.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return translateErr("create product", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translateErr("create product", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, brand, category, base_price, description, created_at
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, translateErr("get product", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	query := `
		SELECT id, name, brand, category, base_price, description, created_at
		FROM products`
	var args []any
	if filter.Keyword != "" {
		query += `
		WHERE name LIKE ? OR brand LIKE ? OR category LIKE ? OR description LIKE ?`
		term := "%" + filter.Keyword + "%"
		args = append(args, term, term, term, term)
	}
	query += `
		ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr("list products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translateErr("list products", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("list products", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, brand = ?, category = ?, base_price = ?, description = ?
		WHERE id = ?`,
		p.Name, p.Brand, nullString(p.Category), p.BasePrice, p.Description, p.ID,
	)
	if err != nil {
		return translateErr("update product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("update product", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "product", ID: p.ID}
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	// Variants cascade at the schema level; their ledger rows block the
	// delete through the variant restrict constraint.
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.BusinessRuleViolation{
				Rule:   "product in use",
				Detail: "product variants are still referenced by documents",
			}
		}
		return translateErr("delete product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("delete product", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p         domain.Product
		category  sql.NullString
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &category, &p.BasePrice, &p.Description, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Category = category.String
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
