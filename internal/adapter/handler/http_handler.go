// Package handler exposes the inventory service over JSON HTTP. It maps
// inputs and error kinds only; all validation and stock rules live below.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/core/service"
	"github.com/rl1809/wms/internal/port"
)

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	inventory *service.InventoryService
	logger    *zap.Logger
}

func NewHTTPHandler(inventory *service.InventoryService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, logger: logger}
}

// Register mounts all routes on the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)

	mux.HandleFunc("POST /api/products/{id}/variants", h.CreateVariant)
	mux.HandleFunc("GET /api/products/{id}/variants", h.ListVariants)
	mux.HandleFunc("GET /api/variants/lowstock", h.ListLowStock)
	mux.HandleFunc("GET /api/variants/{id}", h.GetVariant)
	mux.HandleFunc("PUT /api/variants/{id}", h.UpdateVariant)
	mux.HandleFunc("DELETE /api/variants/{id}", h.DeleteVariant)
	mux.HandleFunc("GET /api/variants/{id}/stock", h.GetStock)

	mux.HandleFunc("POST /api/documents", h.CreateDocument)
	mux.HandleFunc("GET /api/documents", h.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", h.GetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.DeleteDocument)
}

type ProductRequest struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	BasePrice   int64  `json:"base_price"`
	Description string `json:"description"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category,omitempty"`
	BasePrice   int64  `json:"base_price"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type VariantRequest struct {
	Size        string `json:"size"`
	Color       string `json:"color"`
	SKU         string `json:"sku"`
	SafetyStock int    `json:"safety_stock"`
}

type VariantResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	SKU         string `json:"sku,omitempty"`
	StockQty    int    `json:"stock_qty"`
	SafetyStock int    `json:"safety_stock"`
	LowStock    bool   `json:"low_stock"`
}

type DocumentLineRequest struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice *int64 `json:"unit_price,omitempty"`
}

type DocumentRequest struct {
	DocType string                `json:"doc_type"`
	DocDate string                `json:"doc_date"`
	Note    string                `json:"note"`
	Items   []DocumentLineRequest `json:"items"`
}

type DocumentItemResponse struct {
	ID          int64  `json:"id"`
	VariantID   int64  `json:"variant_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   *int64 `json:"unit_price,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	VariantName string `json:"variant_name,omitempty"`
}

type DocumentResponse struct {
	ID          int64                  `json:"id"`
	DocType     string                 `json:"doc_type"`
	DocDate     string                 `json:"doc_date"`
	Note        string                 `json:"note,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	TotalAmount int64                  `json:"total_amount"`
	Items       []DocumentItemResponse `json:"items,omitempty"`
}

type StockResponse struct {
	VariantID   int64 `json:"variant_id"`
	StockQty    int   `json:"stock_qty"`
	Computed    int   `json:"computed"`
	SafetyStock int   `json:"safety_stock"`
	LowStock    bool  `json:"low_stock"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	p := &domain.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		Description: req.Description,
	}
	if err := h.inventory.CreateProduct(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	p := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		BasePrice:   req.BasePrice,
		Description: req.Description,
	}
	if err := h.inventory.UpdateProduct(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventory.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req VariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	v := &domain.Variant{
		ProductID:   productID,
		Size:        req.Size,
		Color:       req.Color,
		SKU:         req.SKU,
		SafetyStock: req.SafetyStock,
	}
	if err := h.inventory.CreateVariant(r.Context(), v); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVariantResponse(v))
}

func (h *HTTPHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	variants, err := h.inventory.VariantsForProduct(r.Context(), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVariantResponses(variants))
}

func (h *HTTPHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	variants, err := h.inventory.LowStockVariants(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVariantResponses(variants))
}

func (h *HTTPHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	v, err := h.inventory.GetVariant(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVariantResponse(v))
}

func (h *HTTPHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	current, err := h.inventory.GetVariant(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req VariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	v := &domain.Variant{
		ID:          id,
		ProductID:   current.ProductID,
		Size:        req.Size,
		Color:       req.Color,
		SKU:         req.SKU,
		StockQty:    current.StockQty,
		SafetyStock: req.SafetyStock,
	}
	if err := h.inventory.UpdateVariant(r.Context(), v); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVariantResponse(v))
}

func (h *HTTPHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventory.DeleteVariant(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	v, err := h.inventory.GetVariant(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	computed, err := h.inventory.CurrentStock(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockResponse{
		VariantID:   id,
		StockQty:    v.StockQty,
		Computed:    computed,
		SafetyStock: v.SafetyStock,
		LowStock:    v.BelowSafetyStock(),
	})
}

func (h *HTTPHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	docType, err := domain.ParseDocType(req.DocType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	docDate, err := time.Parse(dateLayout, req.DocDate)
	if err != nil {
		h.writeError(w, &domain.ValidationError{Field: "doc_date", Reason: "must be YYYY-MM-DD"})
		return
	}
	in := service.CreateDocumentInput{
		DocType: docType,
		DocDate: docDate,
		Note:    req.Note,
	}
	for _, item := range req.Items {
		in.Lines = append(in.Lines, service.DocumentLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	doc, err := h.inventory.CreateDocument(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *HTTPHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var filter port.DocumentFilter
	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		docType, err := domain.ParseDocType(t)
		if err != nil {
			h.writeError(w, err)
			return
		}
		filter.DocType = docType
	}
	if from := q.Get("from"); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			h.writeError(w, &domain.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"})
			return
		}
		filter.DateFrom = parsed
	}
	if to := q.Get("to"); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			h.writeError(w, &domain.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"})
			return
		}
		filter.DateTo = parsed
	}
	docs, err := h.inventory.ListDocuments(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, toDocumentResponse(&docs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.inventory.GetDocument(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *HTTPHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventory.DeleteDocument(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError presents the domain error kind to the client and logs it; the
// handler never re-interprets or swallows errors.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case domain.IsValidation(err):
		status, kind = http.StatusBadRequest, "validation"
	case domain.IsNotFound(err):
		status, kind = http.StatusNotFound, "not_found"
	case domain.IsOutOfStock(err):
		status, kind = http.StatusConflict, "out_of_stock"
	case domain.IsDuplicate(err):
		status, kind = http.StatusConflict, "duplicate"
	case domain.IsBusinessRule(err):
		status, kind = http.StatusUnprocessableEntity, "business_rule"
	case domain.IsPersistence(err):
		status, kind = http.StatusInternalServerError, "persistence"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("kind", kind), zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.String("kind", kind), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		BasePrice:   p.BasePrice,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toVariantResponse(v *domain.Variant) VariantResponse {
	return VariantResponse{
		ID:          v.ID,
		ProductID:   v.ProductID,
		Size:        v.Size,
		Color:       v.Color,
		SKU:         v.SKU,
		StockQty:    v.StockQty,
		SafetyStock: v.SafetyStock,
		LowStock:    v.BelowSafetyStock(),
	}
}

func toVariantResponses(variants []domain.Variant) []VariantResponse {
	resp := make([]VariantResponse, 0, len(variants))
	for i := range variants {
		resp = append(resp, toVariantResponse(&variants[i]))
	}
	return resp
}

func toDocumentResponse(d *domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID,
		DocType:     string(d.DocType),
		DocDate:     d.DocDate.Format(dateLayout),
		Note:        d.Note,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		TotalAmount: d.TotalAmount(),
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, DocumentItemResponse{
			ID:          item.ID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
