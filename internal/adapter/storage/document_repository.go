package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/port"
)

type DocumentRepository struct {
	db *sql.DB
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create writes the header and all items inside one transaction. Either the
// whole document lands or nothing does.
func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return translateErr("create document", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (doc_type, doc_date, note, created_at)
		VALUES (?, ?, ?, ?)`,
		string(d.DocType), d.DocDate.Format(dateLayout), d.Note,
		d.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return translateErr("create document", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return translateErr("create document", err)
	}

	for i := range d.Items {
		item := &d.Items[i]
		var unitPrice sql.NullInt64
		if item.UnitPrice != nil {
			unitPrice = sql.NullInt64{Int64: *item.UnitPrice, Valid: true}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO document_items (doc_id, variant_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`,
			docID, item.VariantID, item.Quantity, unitPrice,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return &domain.NotFoundError{Entity: "variant", ID: item.VariantID}
			}
			return translateErr("create document item", err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return translateErr("create document item", err)
		}
		item.ID = itemID
		item.DocID = docID
	}

	if err := tx.Commit(); err != nil {
		return translateErr("create document", err)
	}
	d.ID = docID
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, doc_type, doc_date, note, created_at
		FROM documents WHERE id = ?`, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "document", ID: id}
	}
	if err != nil {
		return nil, translateErr("get document", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.doc_id, i.variant_id, i.quantity, i.unit_price,
		       p.name, v.size, v.color
		FROM document_items i
		JOIN variants v ON i.variant_id = v.id
		JOIN products p ON v.product_id = p.id
		WHERE i.doc_id = ?
		ORDER BY i.id`, id)
	if err != nil {
		return nil, translateErr("get document items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        domain.DocumentItem
			unitPrice   sql.NullInt64
			size, color string
		)
		err := rows.Scan(&item.ID, &item.DocID, &item.VariantID, &item.Quantity,
			&unitPrice, &item.ProductName, &size, &color)
		if err != nil {
			return nil, translateErr("get document items", err)
		}
		if unitPrice.Valid {
			price := unitPrice.Int64
			item.UnitPrice = &price
		}
		item.VariantName = size + " / " + color
		d.Items = append(d.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("get document items", err)
	}
	return d, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter port.DocumentFilter) ([]domain.Document, error) {
	query := `
		SELECT id, doc_type, doc_date, note, created_at
		FROM documents WHERE 1=1`
	var args []any
	if filter.DocType != "" {
		query += ` AND doc_type = ?`
		args = append(args, string(filter.DocType))
	}
	if !filter.DateFrom.IsZero() {
		query += ` AND doc_date >= ?`
		args = append(args, filter.DateFrom.Format(dateLayout))
	}
	if !filter.DateTo.IsZero() {
		query += ` AND doc_date <= ?`
		args = append(args, filter.DateTo.Format(dateLayout))
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr("list documents", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, translateErr("list documents", err)
		}
		docs = append(docs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("list documents", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	// Items cascade at the schema level; the delete and the cascade are one
	// implicit transaction.
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return translateErr("delete document", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translateErr("delete document", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

// SumSignedQuantity is the authoritative ledger read: every item for the
// variant, signed by its document type, summed in the database.
func (r *DocumentRepository) SumSignedQuantity(ctx context.Context, variantID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE d.doc_type
			WHEN 'OUTBOUND' THEN -i.quantity
			ELSE i.quantity
		END), 0)
		FROM document_items i
		JOIN documents d ON i.doc_id = d.id
		WHERE i.variant_id = ?`, variantID,
	).Scan(&total)
	if err != nil {
		return 0, translateErr("sum ledger", err)
	}
	return total, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		d                 domain.Document
		docType           string
		docDate, createdAt string
	)
	err := row.Scan(&d.ID, &docType, &docDate, &d.Note, &createdAt)
	if err != nil {
		return nil, err
	}
	d.DocType = domain.DocType(docType)
	d.DocDate, _ = time.Parse(dateLayout, docDate)
	d.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &d, nil
}
