package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quickbite-app/quickbite/internal/domain"
)

type Handler struct {
	repo   *CatalogRepository
	logger *slog.Logger
}

func NewHandler(repo *CatalogRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if category.Name == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	if err := h.repo.CreateCategory(r.Context(), &category); err != nil {
		if isUniqueViolation(err) {
			h.writeError(w, http.StatusConflict, "category already exists")
			return
		}
		h.logger.Error("failed to create category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")
	if categoryID == "" {
		h.writeError(w, http.StatusBadRequest, "missing category id")
		return
	}

	items, err := h.repo.ListItemsByCategory(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("failed to list items", "error", err, "category_id", categoryID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	item, err := h.repo.GetItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if item == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := validateItem(&item); !ok {
		h.writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	if err := h.repo.CreateItem(r.Context(), &item); err != nil {
		if isUniqueViolation(err) {
			h.writeError(w, http.StatusConflict, "item already exists")
			return
		}
		h.logger.Error("failed to create item", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("menu item created", "item_id", item.ID, "name", item.Name, "price", item.Price)
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ID = id
	if msg, ok := validateItem(&item); !ok {
		h.writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	updated, err := h.repo.UpdateItem(r.Context(), &item)
	if err != nil {
		h.logger.Error("failed to update item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !updated {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.logger.Info("menu item updated", "item_id", id)
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	deleted, err := h.repo.DeleteItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.logger.Info("menu item deleted", "item_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func validateItem(item *domain.MenuItem) (string, bool) {
	if item.Name == "" {
		return "name is required", false
	}
	if item.CategoryID == "" {
		return "category_id is required", false
	}
	if item.Price.IsNegative() {
		return "price must not be negative", false
	}
	return "", true
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
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
