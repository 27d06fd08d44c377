package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/quickbite-app/quickbite/internal/auth"
)

// Handler exposes the cart ledger over HTTP. Every route requires an
// authenticated customer; the identity keys the session store.
type Handler struct {
	carts    *Store
	catalog  *CatalogClient
	checkout *Checkout
	logger   *slog.Logger
}

func NewHandler(carts *Store, catalog *CatalogClient, checkout *Checkout, logger *slog.Logger) *Handler {
	return &Handler{
		carts:    carts,
		catalog:  catalog,
		checkout: checkout,
		logger:   logger,
	}
}

type lineResponse struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Lines []lineResponse  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func newCartResponse(lines []Line, total decimal.Decimal) cartResponse {
	resp := cartResponse{Lines: make([]lineResponse, 0, len(lines)), Total: total}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return resp
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ledger := h.ledger(r)
	h.writeJSON(w, http.StatusOK, newCartResponse(ledger.Lines(), ledger.Total()))
}

type addItemRequest struct {
	ItemID string `json:"item_id"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.catalog.GetItem(r.Context(), req.ItemID)
	if err != nil {
		h.logger.Error("failed to resolve item", "error", err, "item_id", req.ItemID)
		h.writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	ledger := h.ledger(r)
	ledger.AddItem(*item)

	h.logger.Info("item added to cart", "item_id", item.ID, "name", item.Name)
	h.writeJSON(w, http.StatusOK, newCartResponse(ledger.Lines(), ledger.Total()))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Absent items and non-positive quantities are handled by the ledger
	// itself (no-op and removal); both answer with the current state.
	ledger := h.ledger(r)
	ledger.UpdateQuantity(itemID, req.Quantity)

	h.writeJSON(w, http.StatusOK, newCartResponse(ledger.Lines(), ledger.Total()))
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	ledger := h.ledger(r)
	ledger.RemoveItem(itemID)

	h.writeJSON(w, http.StatusOK, newCartResponse(ledger.Lines(), ledger.Total()))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ledger := h.ledger(r)
	ledger.Clear()

	h.writeJSON(w, http.StatusOK, newCartResponse(ledger.Lines(), ledger.Total()))
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	order, err := h.checkout.Submit(r.Context(), id.CustomerID, h.carts.Ledger(id.CustomerID))
	switch {
	case errors.Is(err, ErrAuthRequired):
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	case errors.Is(err, ErrEmptyCart):
		h.writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		return
	case err != nil:
		h.logger.Error("checkout failed", "error", err, "customer_id", id.CustomerID)
		h.writeError(w, http.StatusBadGateway, "order submission failed, cart preserved")
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) ledger(r *http.Request) *Ledger {
	id, _ := auth.FromContext(r.Context())
	return h.carts.Ledger(id.CustomerID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
