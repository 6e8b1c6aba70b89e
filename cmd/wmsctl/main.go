// wmsctl is the operator tool for maintenance paths that must stay off the
// regular document flow: snapshot reinitialization, ledger recompute and
// low-stock inspection.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/adapter/storage"
	"github.com/rl1809/wms/internal/core/ledger"
	"github.com/rl1809/wms/internal/core/service"
)

var (
	db        *sql.DB
	inventory *service.InventoryService

	rootCmd = &cobra.Command{
		Use:   "wmsctl",
		Short: "Warehouse stock maintenance tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			db, err = storage.Open(viper.GetString("db"))
			if err != nil {
				return err
			}
			if err := storage.InitSchema(db); err != nil {
				return err
			}
			products := storage.NewProductRepository(db)
			variants := storage.NewVariantRepository(db)
			documents := storage.NewDocumentRepository(db)
			engine := ledger.NewEngine(variants, documents, logger)
			inventory = service.NewInventoryService(products, variants, documents, engine, nil, logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("db", "wms.db", "path to the warehouse database file")
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.SetEnvPrefix("WMS")
	viper.AutomaticEnv()

	stockCmd := &cobra.Command{
		Use:   "stock <variant-id>",
		Short: "Show snapshot and ledger-derived stock for a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()
			variant, err := inventory.GetVariant(ctx, id)
			if err != nil {
				return err
			}
			computed, err := inventory.CurrentStock(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("variant %d (%s, sku=%s)\n", variant.ID, variant.DisplayName(), variant.SKU)
			fmt.Printf("  snapshot: %d\n", variant.StockQty)
			fmt.Printf("  ledger:   %d\n", computed)
			if variant.StockQty != computed {
				fmt.Println("  DRIFT DETECTED - run 'wmsctl recompute' to repair")
			}
			return nil
		},
	}
	rootCmd.AddCommand(stockCmd)

	recomputeCmd := &cobra.Command{
		Use:   "recompute [variant-id]",
		Short: "Re-derive snapshots from the document ledger (one variant, or all when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) == 0 {
				corrected, err := inventory.RecomputeAllStock(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("full recompute done: %d snapshot(s) corrected\n", corrected)
				return nil
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := inventory.RecomputeStock(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("variant %d recomputed: stock_qty=%d\n", id, quantity)
			return nil
		},
	}
	rootCmd.AddCommand(recomputeCmd)

	reinitCmd := &cobra.Command{
		Use:   "reinit <variant-id> <quantity>",
		Short: "Overwrite a variant's snapshot outside the ledger (initial load or drift correction)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %w", err)
			}
			if err := inventory.ReinitializeStock(context.Background(), id, quantity); err != nil {
				return err
			}
			fmt.Printf("variant %d reinitialized: stock_qty=%d\n", id, quantity)
			return nil
		},
	}
	rootCmd.AddCommand(reinitCmd)

	lowstockCmd := &cobra.Command{
		Use:   "lowstock",
		Short: "List variants strictly below their safety threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := inventory.LowStockVariants(context.Background())
			if err != nil {
				return err
			}
			if len(variants) == 0 {
				fmt.Println("no variants below safety stock")
				return nil
			}
			for _, v := range variants {
				fmt.Printf("variant %d (%s, sku=%s): stock=%d safety=%d\n",
					v.ID, v.DisplayName(), v.SKU, v.StockQty, v.SafetyStock)
			}
			return nil
		},
	}
	rootCmd.AddCommand(lowstockCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("variant id must be a positive integer, got %q", s)
	}
	return id, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
