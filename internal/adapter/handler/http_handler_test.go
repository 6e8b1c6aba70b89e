package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/adapter/storage"
	"github.com/rl1809/wms/internal/core/ledger"
	"github.com/rl1809/wms/internal/core/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitSchema(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	products := storage.NewProductRepository(db)
	variants := storage.NewVariantRepository(db)
	documents := storage.NewDocumentRepository(db)
	logger := zap.NewNop()
	svc := service.NewInventoryService(
		products, variants, documents,
		ledger.NewEngine(variants, documents, logger),
		nil, logger,
	)

	mux := http.NewServeMux()
	NewHTTPHandler(svc, logger).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, out.Bytes()
}

func decodeInto(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to decode response %q: %v", data, err)
	}
}

func seedCatalog(t *testing.T, srv *httptest.Server) (productID, variantID int64) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/products", ProductRequest{
		Name: "Air Zoom", Brand: "Nike", BasePrice: 12900,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status = %d, body = %s", resp.StatusCode, body)
	}
	var p ProductResponse
	decodeInto(t, body, &p)

	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/products/%d/variants", srv.URL, p.ID), VariantRequest{
		Size: "US 9.5", Color: "Red",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create variant: status = %d, body = %s", resp.StatusCode, body)
	}
	var v VariantResponse
	decodeInto(t, body, &v)
	return p.ID, v.ID
}

func postDocument(t *testing.T, srv *httptest.Server, docType string, variantID int64, quantity int) (*http.Response, []byte) {
	t.Helper()
	return doJSON(t, http.MethodPost, srv.URL+"/api/documents", DocumentRequest{
		DocType: docType,
		DocDate: "2026-03-01",
		Items:   []DocumentLineRequest{{VariantID: variantID, Quantity: quantity}},
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDocumentFlow(t *testing.T) {
	srv := newTestServer(t)
	_, variantID := seedCatalog(t, srv)

	resp, body := postDocument(t, srv, "INBOUND", variantID, 10)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("post inbound: status = %d, body = %s", resp.StatusCode, body)
	}
	var doc DocumentResponse
	decodeInto(t, body, &doc)
	if doc.ID == 0 || len(doc.Items) != 1 {
		t.Fatalf("unexpected document response: %+v", doc)
	}

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/variants/%d/stock", srv.URL, variantID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get stock: status = %d", resp.StatusCode)
	}
	var stock StockResponse
	decodeInto(t, body, &stock)
	if stock.StockQty != 10 || stock.Computed != 10 {
		t.Errorf("stock = %+v, want 10/10", stock)
	}
	if stock.LowStock {
		t.Error("stock 10 against threshold 5 reported low")
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/documents/%d", srv.URL, doc.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete document: status = %d", resp.StatusCode)
	}
	_, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/variants/%d/stock", srv.URL, variantID), nil)
	decodeInto(t, body, &stock)
	if stock.StockQty != 0 || stock.Computed != 0 {
		t.Errorf("stock after delete = %+v, want 0/0", stock)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)
	_, variantID := seedCatalog(t, srv)

	cases := []struct {
		name       string
		run        func(t *testing.T) (*http.Response, []byte)
		wantStatus int
		wantKind   string
	}{
		{
			"validation", func(t *testing.T) (*http.Response, []byte) {
				return postDocument(t, srv, "TRANSFER", variantID, 1)
			},
			http.StatusBadRequest, "validation",
		},
		{
			"not found", func(t *testing.T) (*http.Response, []byte) {
				return doJSON(t, http.MethodGet, srv.URL+"/api/products/9999", nil)
			},
			http.StatusNotFound, "not_found",
		},
		{
			"out of stock", func(t *testing.T) (*http.Response, []byte) {
				return postDocument(t, srv, "OUTBOUND", variantID, 99)
			},
			http.StatusConflict, "out_of_stock",
		},
		{
			"bad path id", func(t *testing.T) (*http.Response, []byte) {
				return doJSON(t, http.MethodGet, srv.URL+"/api/products/abc", nil)
			},
			http.StatusBadRequest, "validation",
		},
		{
			"bad date", func(t *testing.T) (*http.Response, []byte) {
				return doJSON(t, http.MethodPost, srv.URL+"/api/documents", DocumentRequest{
					DocType: "INBOUND", DocDate: "03/01/2026",
					Items: []DocumentLineRequest{{VariantID: variantID, Quantity: 1}},
				})
			},
			http.StatusBadRequest, "validation",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := tc.run(t)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tc.wantStatus, body)
			}
			var errResp ErrorResponse
			decodeInto(t, body, &errResp)
			if errResp.Kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", errResp.Kind, tc.wantKind)
			}
		})
	}
}

func TestDuplicateSKUConflict(t *testing.T) {
	srv := newTestServer(t)
	productID, _ := seedCatalog(t, srv)

	url := fmt.Sprintf("%s/api/products/%d/variants", srv.URL, productID)
	resp, body := doJSON(t, http.MethodPost, url, VariantRequest{Size: "US 10", Color: "Blue", SKU: "SKU-FIXED01"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d, body = %s", resp.StatusCode, body)
	}
	resp, body = doJSON(t, http.MethodPost, url, VariantRequest{Size: "US 11", Color: "Black", SKU: "SKU-FIXED01"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create: status = %d, body = %s", resp.StatusCode, body)
	}
	var errResp ErrorResponse
	decodeInto(t, body, &errResp)
	if errResp.Kind != "duplicate" {
		t.Errorf("kind = %q, want duplicate", errResp.Kind)
	}
}

func TestDeleteVariantInUse(t *testing.T) {
	srv := newTestServer(t)
	_, variantID := seedCatalog(t, srv)
	postDocument(t, srv, "INBOUND", variantID, 3)

	resp, body := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/variants/%d", srv.URL, variantID), nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", resp.StatusCode, body)
	}
	var errResp ErrorResponse
	decodeInto(t, body, &errResp)
	if errResp.Kind != "business_rule" {
		t.Errorf("kind = %q, want business_rule", errResp.Kind)
	}
}

func TestLowStockEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, variantID := seedCatalog(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/variants/lowstock", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var low []VariantResponse
	decodeInto(t, body, &low)
	if len(low) != 1 || low[0].ID != variantID {
		t.Fatalf("low stock = %+v, want the seeded empty variant", low)
	}

	postDocument(t, srv, "INBOUND", variantID, 8)
	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/variants/lowstock", nil)
	decodeInto(t, body, &low)
	if len(low) != 0 {
		t.Errorf("low stock after restock = %+v, want none", low)
	}
}

func TestListDocumentsFilter(t *testing.T) {
	srv := newTestServer(t)
	_, variantID := seedCatalog(t, srv)
	postDocument(t, srv, "INBOUND", variantID, 10)
	postDocument(t, srv, "OUTBOUND", variantID, 2)

	_, body := doJSON(t, http.MethodGet, srv.URL+"/api/documents?type=OUTBOUND", nil)
	var docs []DocumentResponse
	decodeInto(t, body, &docs)
	if len(docs) != 1 || docs[0].DocType != "OUTBOUND" {
		t.Errorf("filtered documents = %+v, want one OUTBOUND", docs)
	}

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/documents?type=TRANSFER", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown type: status = %d, want 400", resp.StatusCode)
	}
}
