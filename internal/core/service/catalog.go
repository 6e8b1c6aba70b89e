package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/port"
)

// Catalog operations. These never touch stock directly; a freshly created
// variant starts at zero and gets its opening balance through an INBOUND
// document or an explicit reinitialize.

func (s *InventoryService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// SearchProducts matches the keyword as a substring over name, brand,
// category and description. An empty keyword lists everything.
func (s *InventoryService) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	return s.products.List(ctx, port.ProductFilter{Keyword: keyword})
}

func (s *InventoryService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.products.Update(ctx, p)
}

// DeleteProduct removes a product and, through the schema cascade, its
// variants. It fails while any of those variants still appears on a document.
func (s *InventoryService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// CreateVariant registers a new stock-keeping unit. A blank SKU gets a
// generated one; a taken SKU fails with DuplicateEntityError. A zero safety
// threshold falls back to the catalog default.
func (s *InventoryService) CreateVariant(ctx context.Context, v *domain.Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if _, err := s.products.GetByID(ctx, v.ProductID); err != nil {
		return err
	}
	if v.SafetyStock == 0 {
		v.SafetyStock = domain.DefaultSafetyStock
	}
	if v.SKU == "" {
		v.SKU = generateSKU()
	} else if existing, err := s.variants.GetBySKU(ctx, v.SKU); err == nil && existing != nil {
		return &domain.DuplicateEntityError{Entity: "variant SKU", Key: v.SKU}
	} else if err != nil && !domain.IsNotFound(err) {
		return err
	}
	// New variants always start empty; stock arrives through documents.
	v.StockQty = 0
	if err := s.variants.Create(ctx, v); err != nil {
		return err
	}
	s.logger.Info("variant created",
		zap.Int64("variant_id", v.ID),
		zap.Int64("product_id", v.ProductID),
		zap.String("sku", v.SKU))
	return nil
}

func (s *InventoryService) GetVariant(ctx context.Context, id int64) (*domain.Variant, error) {
	return s.variants.GetByID(ctx, id)
}

func (s *InventoryService) UpdateVariant(ctx context.Context, v *domain.Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return s.variants.Update(ctx, v)
}

func (s *InventoryService) DeleteVariant(ctx context.Context, id int64) error {
	if err := s.variants.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteStock(ctx, id); err != nil {
			s.logger.Warn("stock cache invalidation failed",
				zap.Int64("variant_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *InventoryService) VariantsForProduct(ctx context.Context, productID int64) ([]domain.Variant, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.variants.ListByProduct(ctx, productID)
}

// LowStockVariants returns every variant strictly below its safety threshold.
func (s *InventoryService) LowStockVariants(ctx context.Context) ([]domain.Variant, error) {
	return s.variants.ListLowStock(ctx)
}

func generateSKU() string {
	return "SKU-" + strings.ToUpper(uuid.NewString()[:8])
}
