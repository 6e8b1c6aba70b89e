// Package service orchestrates warehouse use cases over the repository
// contracts and the ledger engine.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/core/ledger"
	"github.com/rl1809/wms/internal/port"
)

// InventoryService is the single entry point for every stock mutation.
// There is no direct stock-increment API: quantities change only through
// posted documents, and the cached snapshot follows via the ledger engine.
type InventoryService struct {
	products  port.ProductRepository
	variants  port.VariantRepository
	documents port.DocumentRepository
	ledger    *ledger.Engine
	cache     port.CacheRepository // nil disables the read-side mirror
	logger    *zap.Logger
}

func NewInventoryService(
	products port.ProductRepository,
	variants port.VariantRepository,
	documents port.DocumentRepository,
	engine *ledger.Engine,
	cache port.CacheRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		products:  products,
		variants:  variants,
		documents: documents,
		ledger:    engine,
		cache:     cache,
		logger:    logger,
	}
}

// DocumentLine is one requested line of a new document.
type DocumentLine struct {
	VariantID int64
	Quantity  int
	UnitPrice *int64
}

// CreateDocumentInput carries everything needed to post a document.
type CreateDocumentInput struct {
	DocType domain.DocType
	DocDate time.Time
	Note    string
	Lines   []DocumentLine
}

// CreateDocument validates, persists header plus items atomically, then
// updates every affected variant's snapshot through the ledger engine.
//
// If a snapshot delta fails after the document committed, the service
// recovers by re-deriving from the ledger instead of rolling the document
// back: cache drift is repairable, a lost document is not.
func (s *InventoryService) CreateDocument(ctx context.Context, in CreateDocumentInput) (*domain.Document, error) {
	doc := &domain.Document{
		DocType:   in.DocType,
		DocDate:   in.DocDate,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}
	for _, line := range in.Lines {
		doc.Items = append(doc.Items, domain.DocumentItem{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	impact := doc.StockImpact()
	for variantID := range impact {
		if _, err := s.variants.GetByID(ctx, variantID); err != nil {
			return nil, err
		}
	}

	switch doc.DocType {
	case domain.DocTypeOutbound:
		if err := s.checkOutboundStock(ctx, doc); err != nil {
			return nil, err
		}
	case domain.DocTypeAdjust:
		s.warnNegativeAdjust(ctx, impact)
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	for variantID, delta := range impact {
		quantity, err := s.ledger.ApplyDelta(ctx, variantID, delta)
		if err != nil {
			s.logger.Error("stock delta failed after document commit, reconciling from ledger",
				zap.Int64("doc_id", doc.ID),
				zap.Int64("variant_id", variantID),
				zap.Error(err))
			quantity, err = s.ledger.Reconcile(ctx, variantID)
			if err != nil {
				return doc, err
			}
		}
		s.cacheStock(ctx, variantID, quantity)
	}

	s.logger.Info("document posted",
		zap.Int64("doc_id", doc.ID),
		zap.String("doc_type", string(doc.DocType)),
		zap.Int("items", len(doc.Items)))
	return doc, nil
}

// checkOutboundStock verifies sufficiency item by item, tracking the running
// requirement per variant so repeated lines cannot slip past the guard. The
// first shortfall aborts the whole document.
func (s *InventoryService) checkOutboundStock(ctx context.Context, doc *domain.Document) error {
	required := make(map[int64]int)
	available := make(map[int64]int)
	for _, item := range doc.Items {
		if _, ok := available[item.VariantID]; !ok {
			stock, err := s.ledger.ComputeStock(ctx, item.VariantID)
			if err != nil {
				return err
			}
			available[item.VariantID] = stock
		}
		required[item.VariantID] += item.Quantity
		if available[item.VariantID] < required[item.VariantID] {
			return &domain.OutOfStockError{
				VariantID: item.VariantID,
				Requested: required[item.VariantID],
				Available: available[item.VariantID],
			}
		}
	}
	return nil
}

// warnNegativeAdjust logs adjustments that drive a snapshot below zero.
// ADJUST may bypass the non-negative rule to correct drift, but never
// silently.
func (s *InventoryService) warnNegativeAdjust(ctx context.Context, impact map[int64]int) {
	for variantID, delta := range impact {
		if delta >= 0 {
			continue
		}
		stock, err := s.ledger.ComputeStock(ctx, variantID)
		if err != nil {
			continue
		}
		if stock+delta < 0 {
			s.logger.Warn("adjustment drives stock negative",
				zap.Int64("variant_id", variantID),
				zap.Int("stock_qty", stock),
				zap.Int("delta", delta))
		}
	}
}

// DeleteDocument removes a posted document and re-derives stock for every
// variant it touched. The recompute is always full: a reversed delta cannot
// be trusted if the rows were ever edited outside this service.
func (s *InventoryService) DeleteDocument(ctx context.Context, id int64) error {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	for variantID := range doc.StockImpact() {
		quantity, err := s.ledger.Reconcile(ctx, variantID)
		if err != nil {
			return err
		}
		s.cacheStock(ctx, variantID, quantity)
	}
	s.logger.Info("document deleted",
		zap.Int64("doc_id", id),
		zap.String("doc_type", string(doc.DocType)))
	return nil
}

// CurrentStock derives the authoritative quantity from the ledger.
func (s *InventoryService) CurrentStock(ctx context.Context, variantID int64) (int, error) {
	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		return 0, err
	}
	return s.ledger.ComputeStock(ctx, variantID)
}

// CheckSafetyStock reports whether current stock sits strictly below the
// variant's safety threshold.
func (s *InventoryService) CheckSafetyStock(ctx context.Context, variantID int64) (bool, error) {
	variant, err := s.variants.GetByID(ctx, variantID)
	if err != nil {
		return false, err
	}
	return variant.BelowSafetyStock(), nil
}

// RecomputeStock re-derives and rewrites the snapshot for one variant.
// Repair path for suspected drift.
func (s *InventoryService) RecomputeStock(ctx context.Context, variantID int64) (int, error) {
	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		return 0, err
	}
	quantity, err := s.ledger.Reconcile(ctx, variantID)
	if err != nil {
		return 0, err
	}
	s.cacheStock(ctx, variantID, quantity)
	return quantity, nil
}

// RecomputeAllStock sweeps the whole catalog, re-deriving every variant's
// snapshot from the ledger. Returns how many snapshots were corrected.
func (s *InventoryService) RecomputeAllStock(ctx context.Context) (int, error) {
	variants, err := s.variants.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	corrected := 0
	for _, v := range variants {
		quantity, err := s.ledger.Reconcile(ctx, v.ID)
		if err != nil {
			return corrected, err
		}
		if quantity != v.StockQty {
			corrected++
			s.logger.Warn("stock drift corrected",
				zap.Int64("variant_id", v.ID),
				zap.Int("was", v.StockQty),
				zap.Int("stock_qty", quantity))
		}
		s.cacheStock(ctx, v.ID, quantity)
	}
	return corrected, nil
}

// ReinitializeStock overwrites a variant's snapshot outside the ledger, for
// initial data load or drift correction. Only the admin tooling wires this
// up; the HTTP surface does not expose it.
func (s *InventoryService) ReinitializeStock(ctx context.Context, variantID int64, quantity int) error {
	if quantity < 0 {
		return &domain.ValidationError{Field: "stock_qty", Reason: "must not be negative"}
	}
	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		return err
	}
	if err := s.ledger.Reinitialize(ctx, variantID, quantity); err != nil {
		return err
	}
	s.cacheStock(ctx, variantID, quantity)
	return nil
}

// GetDocument returns one document with items.
func (s *InventoryService) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	return s.documents.GetByID(ctx, id)
}

// ListDocuments returns matching headers, newest first.
func (s *InventoryService) ListDocuments(ctx context.Context, filter port.DocumentFilter) ([]domain.Document, error) {
	if filter.DocType != "" && !filter.DocType.Valid() {
		return nil, &domain.ValidationError{Field: "doc_type", Reason: "must be one of INBOUND, OUTBOUND, ADJUST"}
	}
	return s.documents.List(ctx, filter)
}

func (s *InventoryService) cacheStock(ctx context.Context, variantID int64, quantity int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetStock(ctx, variantID, quantity); err != nil {
		s.logger.Warn("stock cache update failed",
			zap.Int64("variant_id", variantID),
			zap.Error(err))
	}
}
