// Package ledger derives variant stock from the document history and keeps
// the cached snapshot on variants in step with it.
package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/port"
)

// Engine computes stock from the append-style document ledger. The cached
// stock_qty on a variant is a materialized view over that ledger; the engine
// owns every write to it.
type Engine struct {
	variants  port.VariantRepository
	documents port.DocumentRepository
	logger    *zap.Logger
}

func NewEngine(variants port.VariantRepository, documents port.DocumentRepository, logger *zap.Logger) *Engine {
	return &Engine{
		variants:  variants,
		documents: documents,
		logger:    logger,
	}
}

// ComputeStock recomputes the authoritative quantity from the full ledger.
// It is a pure read and safe to call at any time; a variant with no ledger
// rows computes to zero.
func (e *Engine) ComputeStock(ctx context.Context, variantID int64) (int, error) {
	return e.documents.SumSignedQuantity(ctx, variantID)
}

// ApplyDelta is the incremental fast path used immediately after a document
// is posted. Its result must always equal what ComputeStock would yield for
// the same ledger state.
func (e *Engine) ApplyDelta(ctx context.Context, variantID int64, delta int) (int, error) {
	quantity, err := e.variants.ApplyStockDelta(ctx, variantID, delta)
	if err != nil {
		return 0, err
	}
	e.logger.Debug("stock delta applied",
		zap.Int64("variant_id", variantID),
		zap.Int("delta", delta),
		zap.Int("stock_qty", quantity))
	return quantity, nil
}

// Reinitialize overwrites the cached snapshot directly. This is the only
// sanctioned write that bypasses the ledger, reserved for initial data load
// and drift correction. Every call is logged as an audit event so it cannot
// be mistaken for delta traffic.
func (e *Engine) Reinitialize(ctx context.Context, variantID int64, quantity int) error {
	if err := e.variants.SetStock(ctx, variantID, quantity); err != nil {
		return err
	}
	e.logger.Warn("stock snapshot reinitialized outside ledger",
		zap.String("op", "reinitialize"),
		zap.Int64("variant_id", variantID),
		zap.Int("stock_qty", quantity))
	return nil
}

// Reconcile re-derives stock from the ledger and writes it back to the
// snapshot. It backs document deletion and the recovery path after a failed
// delta.
func (e *Engine) Reconcile(ctx context.Context, variantID int64) (int, error) {
	quantity, err := e.ComputeStock(ctx, variantID)
	if err != nil {
		return 0, err
	}
	if err := e.variants.SetStock(ctx, variantID, quantity); err != nil {
		return 0, err
	}
	e.logger.Info("stock snapshot reconciled from ledger",
		zap.Int64("variant_id", variantID),
		zap.Int("stock_qty", quantity))
	return quantity, nil
}
