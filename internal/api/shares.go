package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anakralj/vitrina/internal/inventory"
	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/store"
)

// SharesHandler handles share link endpoints, including the public read-only
// collection view a link points at.
type SharesHandler struct {
	DB   *sql.DB
	Sync *inventory.Synchronizer
}

// List handles GET /api/shares.
func (h *SharesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	links, err := store.ListShareLinks(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list share links")
		return
	}
	if links == nil {
		links = []model.ShareLink{}
	}
	jsonResponse(w, http.StatusOK, links)
}

// Create handles POST /api/shares.
func (h *SharesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var settings model.ShareSettings
	if err := decodeJSON(r, &settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := store.CreateShareLink(r.Context(), h.DB, claims.UserID, settings)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create share link")
		return
	}
	jsonResponse(w, http.StatusCreated, link)
}

// Update handles PUT /api/shares/{id}.
func (h *SharesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var settings model.ShareSettings
	if err := decodeJSON(r, &settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := store.UpdateShareSettings(r.Context(), h.DB, r.PathValue("id"), claims.UserID, settings)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "share link not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update share link")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "share link updated"})
}

// Delete handles DELETE /api/shares/{id}.
func (h *SharesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	err := store.DeactivateShareLink(r.Context(), h.DB, r.PathValue("id"), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "share link not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete share link")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "share link deleted"})
}

// sharedItem is the redacted item shape served to anonymous viewers. Which
// fields carry data depends on the link's settings.
type sharedItem struct {
	Name          string           `json:"name"`
	Category      string           `json:"category,omitempty"`
	Condition     string           `json:"condition,omitempty"`
	Subcategory   string           `json:"subcategory,omitempty"`
	Manufacturer  string           `json:"manufacturer,omitempty"`
	Pattern       string           `json:"pattern,omitempty"`
	Quantity      int              `json:"quantity"`
	CurrentValue  *decimal.Decimal `json:"current_value,omitempty"`
	Location      string           `json:"location,omitempty"`
	Description   string           `json:"description,omitempty"`
	PhotoURL      *string          `json:"photo_url,omitempty"`
}

// Public handles GET /api/shared/{share_id} without authentication. Only the
// active view is ever exposed, redacted per the link's settings.
func (h *SharesHandler) Public(w http.ResponseWriter, r *http.Request) {
	link, err := store.GetShareLinkByShareID(r.Context(), h.DB, r.PathValue("share_id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if link == nil {
		jsonError(w, http.StatusNotFound, "share link not found")
		return
	}

	items, err := h.Sync.FetchItems(r.Context(), link.UserID, model.ViewActive)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load collection")
		return
	}

	shared := make([]sharedItem, 0, len(items))
	for _, item := range items {
		out := sharedItem{
			Name:         item.Name,
			Category:     item.Category,
			Condition:    item.Condition,
			Subcategory:  item.Subcategory,
			Manufacturer: item.Manufacturer,
			Pattern:      item.Pattern,
			Quantity:     item.Quantity,
			PhotoURL:     item.PhotoURL,
		}
		if link.Settings.ShowValues {
			value := item.CurrentValue
			out.CurrentValue = &value
		}
		if link.Settings.ShowLocations {
			out.Location = item.Location
		}
		if link.Settings.ShowNotes {
			out.Description = item.Description
		}
		shared = append(shared, out)
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"share_id": link.ShareID,
		"items":    shared,
	})
}
