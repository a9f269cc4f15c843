package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/blob"
	"github.com/anakralj/vitrina/internal/imaging"
	"github.com/anakralj/vitrina/internal/inventory"
	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/store"
)

// ItemsHandler handles item endpoints. All mutations go through the
// Synchronizer so taxonomy resolution and post-write refetch semantics apply
// uniformly.
type ItemsHandler struct {
	DB     *sql.DB
	Sync   *inventory.Synchronizer
	Photos blob.Store
}

type createItemRequest struct {
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Condition        string          `json:"condition"`
	Subcategory      string          `json:"subcategory"`
	Manufacturer     string          `json:"manufacturer"`
	Pattern          string          `json:"pattern"`
	YearManufactured *int            `json:"year_manufactured"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	Quantity         *float64        `json:"quantity"`
	PurchaseDate     *time.Time      `json:"purchase_date"`
	Favorite         bool            `json:"favorite"`
}

type updateItemRequest struct {
	Name             *string          `json:"name"`
	Category         *string          `json:"category"`
	Condition        *string          `json:"condition"`
	Subcategory      *string          `json:"subcategory"`
	Manufacturer     *string          `json:"manufacturer"`
	Pattern          *string          `json:"pattern"`
	YearManufactured *int             `json:"year_manufactured"`
	Description      *string          `json:"description"`
	Location         *string          `json:"location"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price"`
	CurrentValue     *decimal.Decimal `json:"current_value"`
	Quantity         *float64         `json:"quantity"`
	PurchaseDate     *time.Time       `json:"purchase_date"`
	Favorite         *bool            `json:"favorite"`
}

// List handles GET /api/items. The view query parameter selects the active
// or archived partition and defaults to active.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	view := model.ViewMode(r.URL.Query().Get("view"))
	if view == "" {
		view = model.ViewActive
	}
	if !view.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid view, must be active or archived")
		return
	}

	items, err := h.Sync.FetchItems(r.Context(), claims.UserID, view)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := inventory.ItemInput{
		Name:             req.Name,
		Category:         req.Category,
		Condition:        req.Condition,
		Subcategory:      req.Subcategory,
		Manufacturer:     req.Manufacturer,
		Pattern:          req.Pattern,
		YearManufactured: req.YearManufactured,
		Description:      req.Description,
		Location:         req.Location,
		PurchasePrice:    req.PurchasePrice,
		CurrentValue:     req.CurrentValue,
		Quantity:         1,
		PurchaseDate:     req.PurchaseDate,
		Favorite:         req.Favorite,
	}
	// An omitted quantity means one; an explicit zero is rejected downstream.
	if req.Quantity != nil {
		input.Quantity = *req.Quantity
	}

	item, err := h.Sync.AddItem(r.Context(), claims.UserID, input)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Sync.UpdateItem(r.Context(), claims.UserID, r.PathValue("id"), inventory.ItemUpdate{
		Name:             req.Name,
		Category:         req.Category,
		Condition:        req.Condition,
		Subcategory:      req.Subcategory,
		Manufacturer:     req.Manufacturer,
		Pattern:          req.Pattern,
		YearManufactured: req.YearManufactured,
		Description:      req.Description,
		Location:         req.Location,
		PurchasePrice:    req.PurchasePrice,
		CurrentValue:     req.CurrentValue,
		Quantity:         req.Quantity,
		PurchaseDate:     req.PurchaseDate,
		Favorite:         req.Favorite,
	})
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Archive handles POST /api/items/{id}/archive.
func (h *ItemsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Sync.Archive)
}

// Restore handles POST /api/items/{id}/restore.
func (h *ItemsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Sync.Restore)
}

func (h *ItemsHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, id string) error) {
	claims := GetClaims(r.Context())

	err := op(r.Context(), claims.UserID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "ok"})
}

type favoriteRequest struct {
	Current bool `json:"current"`
}

// Favorite handles POST /api/items/{id}/favorite. The client sends the value
// it is currently rendering; the response carries the confirmed value after
// the optimistic flip settles.
func (h *ItemsHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flag := inventory.NewOptimisticFlag(req.Current)
	err := flag.Toggle(r.Context(), h.Sync, claims.UserID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"favorite": flag.Value()})
}

// UploadPhoto handles PUT /api/items/{id}/photo. The photo is normalized to
// JPEG and stored outside the database; the item only records its URL.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.Photos.Save(id+".jpg", photo.Data)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}
	if _, err := h.Photos.Save(id+"_thumb.jpg", photo.Thumb); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	item, err := h.Sync.UpdateItem(r.Context(), claims.UserID, id, inventory.ItemUpdate{PhotoURL: &url})
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo URL")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Valuations handles GET /api/items/{id}/valuations.
func (h *ItemsHandler) Valuations(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	valuations, err := store.GetItemValuations(r.Context(), h.DB, r.PathValue("id"), claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get valuations")
		return
	}
	if valuations == nil {
		valuations = []model.Valuation{}
	}
	jsonResponse(w, http.StatusOK, valuations)
}

// RecentValuations handles GET /api/valuations.
func (h *ItemsHandler) RecentValuations(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	valuations, err := store.ListValuations(r.Context(), h.DB, claims.UserID, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list valuations")
		return
	}
	if valuations == nil {
		valuations = []model.Valuation{}
	}
	jsonResponse(w, http.StatusOK, valuations)
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	stats, err := h.Sync.Stats(r.Context(), claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
