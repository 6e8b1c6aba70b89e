package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/port"
)

type VariantRepository struct {
	db *sql.DB
}

var _ port.VariantRepository = (*VariantRepository)(nil)

func NewVariantRepository(db *sql.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

func (r *VariantRepository) Create(ctx context.Context, v *domain.Variant) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO variants (product_id, size, color, sku, stock_qty, safety_stock)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ProductID, v.Size, v.Color, nullString(v.SKU), v.StockQty, v.SafetyStock,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateEntityError{Entity: "variant SKU", Key: v.SKU}
		}
		if isForeignKeyViolation(err) {
			return &domain.NotFoundError{Entity: "product", ID: v.ProductID}
		}
		return translateErr("create variant", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translateErr("create variant", err)
	}
	v.ID = id
	return nil
}

func (r *VariantRepository) GetByID(ctx context.Context, id int64) (*domain.Variant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, size, color, sku, stock_qty, safety_stock
		FROM variants WHERE id = ?`, id)

	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "variant", ID: id}
	}
	if err != nil {
		return nil, translateErr("get variant", err)
	}
	return v, nil
}

func (r *VariantRepository) GetBySKU(ctx context.Context, sku string) (*domain.Variant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, size, color, sku, stock_qty, safety_stock
		FROM variants WHERE sku = ?`, sku)

	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "variant"}
	}
	if err != nil {
		return nil, translateErr("get variant by sku", err)
	}
	return v, nil
}

func (r *VariantRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Variant, error) {
	return r.queryVariants(ctx, "list variants", `
		SELECT id, product_id, size, color, sku, stock_qty, safety_stock
		FROM variants WHERE product_id = ? ORDER BY id`, productID)
}

func (r *VariantRepository) ListAll(ctx context.Context) ([]domain.Variant, error) {
	return r.queryVariants(ctx, "list all variants", `
		SELECT id, product_id, size, color, sku, stock_qty, safety_stock
		FROM variants ORDER BY id`)
}

func (r *VariantRepository) ListLowStock(ctx context.Context) ([]domain.Variant, error) {
	return r.queryVariants(ctx, "list low stock variants", `
		SELECT id, product_id, size, color, sku, stock_qty, safety_stock
		FROM variants WHERE stock_qty < safety_stock ORDER BY id`)
}

func (r *VariantRepository) Update(ctx context.Context, v *domain.Variant) error {
	// stock_qty is deliberately absent: the snapshot is owned by the ledger
	// engine and only changes through ApplyStockDelta or SetStock.
	res, err := r.db.ExecContext(ctx, `
		UPDATE variants
		SET size = ?, color = ?, sku = ?, safety_stock = ?
		WHERE id = ?`,
		v.Size, v.Color, nullString(v.SKU), v.SafetyStock, v.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateEntityError{Entity: "variant SKU", Key: v.SKU}
		}
		return translateErr("update variant", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("update variant", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "variant", ID: v.ID}
	}
	return nil
}

func (r *VariantRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.BusinessRuleViolation{
				Rule:   "variant in use",
				Detail: fmt.Sprintf("variant %d is referenced by document items", id),
			}
		}
		return translateErr("delete variant", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("delete variant", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "variant", ID: id}
	}
	return nil
}

func (r *VariantRepository) ApplyStockDelta(ctx context.Context, id int64, delta int) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx, `
		UPDATE variants SET stock_qty = stock_qty + ? WHERE id = ?
		RETURNING stock_qty`, delta, id,
	).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "variant", ID: id}
	}
	if err != nil {
		return 0, translateErr("apply stock delta", err)
	}
	return quantity, nil
}

func (r *VariantRepository) SetStock(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE variants SET stock_qty = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return translateErr("set stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("set stock", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "variant", ID: id}
	}
	return nil
}

func (r *VariantRepository) queryVariants(ctx context.Context, op, query string, args ...any) ([]domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(op, err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, translateErr(op, err)
		}
		variants = append(variants, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(op, err)
	}
	return variants, nil
}

func scanVariant(row rowScanner) (*domain.Variant, error) {
	var (
		v   domain.Variant
		sku sql.NullString
	)
	err := row.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &sku, &v.StockQty, &v.SafetyStock)
	if err != nil {
		return nil, err
	}
	v.SKU = sku.String
	return &v, nil
}
