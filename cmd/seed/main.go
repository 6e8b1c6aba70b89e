// Command seed loads a demo catalog into a fresh database, posts a round of
// warehouse documents through the service, and verifies that every variant's
// cached snapshot matches the quantity derived from the document ledger.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/adapter/storage"
	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/core/ledger"
	"github.com/rl1809/wms/internal/core/service"
)

func main() {
	dbPath := os.Getenv("WMS_DB_PATH")
	if dbPath == "" {
		dbPath = "wms.db"
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := storage.InitSchema(db); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	products := storage.NewProductRepository(db)
	variants := storage.NewVariantRepository(db)
	documents := storage.NewDocumentRepository(db)
	svc := service.NewInventoryService(
		products, variants, documents,
		ledger.NewEngine(variants, documents, logger),
		nil, logger,
	)

	ctx := context.Background()

	catalog := []struct {
		product  domain.Product
		variants []domain.Variant
	}{
		{
			domain.Product{Name: "Air Zoom Pegasus", Brand: "Nike", Category: "Running", BasePrice: 12900},
			[]domain.Variant{
				{Size: "US 9", Color: "Black"},
				{Size: "US 9.5", Color: "Red"},
			},
		},
		{
			domain.Product{Name: "Gel Kayano 30", Brand: "Asics", Category: "Running", BasePrice: 15900},
			[]domain.Variant{
				{Size: "US 10", Color: "Blue", SafetyStock: 3},
			},
		},
	}

	var variantIDs []int64
	for _, entry := range catalog {
		p := entry.product
		if err := svc.CreateProduct(ctx, &p); err != nil {
			log.Fatalf("failed to create product %q: %v", p.Name, err)
		}
		for _, v := range entry.variants {
			v.ProductID = p.ID
			if err := svc.CreateVariant(ctx, &v); err != nil {
				log.Fatalf("failed to create variant %q: %v", v.DisplayName(), err)
			}
			variantIDs = append(variantIDs, v.ID)
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	price := int64(12900)
	movements := []service.CreateDocumentInput{
		{
			DocType: domain.DocTypeInbound,
			DocDate: today.AddDate(0, 0, -7),
			Note:    "opening delivery",
			Lines: []service.DocumentLine{
				{VariantID: variantIDs[0], Quantity: 20, UnitPrice: &price},
				{VariantID: variantIDs[1], Quantity: 15, UnitPrice: &price},
				{VariantID: variantIDs[2], Quantity: 10},
			},
		},
		{
			DocType: domain.DocTypeOutbound,
			DocDate: today.AddDate(0, 0, -2),
			Note:    "store transfer",
			Lines: []service.DocumentLine{
				{VariantID: variantIDs[0], Quantity: 6},
				{VariantID: variantIDs[2], Quantity: 8},
			},
		},
		{
			DocType: domain.DocTypeAdjust,
			DocDate: today,
			Note:    "cycle count correction",
			Lines: []service.DocumentLine{
				{VariantID: variantIDs[1], Quantity: -1},
			},
		},
	}
	for _, in := range movements {
		if _, err := svc.CreateDocument(ctx, in); err != nil {
			log.Fatalf("failed to post %s document: %v", in.DocType, err)
		}
	}

	fmt.Println("========== SEED RESULTS ==========")
	mismatches := 0
	for _, id := range variantIDs {
		v, err := svc.GetVariant(ctx, id)
		if err != nil {
			log.Fatalf("failed to load variant %d: %v", id, err)
		}
		computed, err := svc.CurrentStock(ctx, id)
		if err != nil {
			log.Fatalf("failed to compute stock for variant %d: %v", id, err)
		}
		status := "OK"
		if v.StockQty != computed {
			status = "MISMATCH"
			mismatches++
		}
		fmt.Printf("variant %-3d %-16s snapshot=%-3d ledger=%-3d low=%-5v %s\n",
			v.ID, v.DisplayName(), v.StockQty, computed, v.BelowSafetyStock(), status)
	}
	fmt.Println("==================================")

	if mismatches == 0 {
		fmt.Println("PASS: every snapshot matches the ledger")
	} else {
		fmt.Printf("FAIL: %d variant(s) drifted from the ledger\n", mismatches)
		os.Exit(1)
	}
}
