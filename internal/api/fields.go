package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/store"
	"github.com/anakralj/vitrina/internal/taxonomy"
)

// FieldsHandler handles custom taxonomy field endpoints.
type FieldsHandler struct {
	DB *sql.DB
}

type createFieldRequest struct {
	FieldType model.FieldType `json:"field_type"`
	Name      string          `json:"name"`
}

// List handles GET /api/fields. With a type query parameter it returns the
// merged option set (built-in defaults followed by the user's custom
// entries); without one it returns the raw custom fields of every type.
func (h *FieldsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	fields, err := store.FetchActiveFields(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list fields")
		return
	}

	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		fieldType := model.FieldType(typeParam)
		if !fieldType.Valid() {
			jsonError(w, http.StatusBadRequest, "invalid field type")
			return
		}
		options := taxonomy.AllForType(fieldType, fields)
		if options == nil {
			options = []taxonomy.Option{}
		}
		jsonResponse(w, http.StatusOK, options)
		return
	}

	if fields == nil {
		fields = []model.TaxonomyField{}
	}
	jsonResponse(w, http.StatusOK, fields)
}

// Create handles POST /api/fields.
func (h *FieldsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.FieldType.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid field type")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	field, err := taxonomy.CreateField(r.Context(), h.DB, req.FieldType, req.Name, claims.UserID)
	if errors.Is(err, store.ErrDuplicateField) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create field")
		return
	}
	jsonResponse(w, http.StatusCreated, field)
}

// Delete handles DELETE /api/fields/{type}/{name}. Deactivation leaves
// existing items untouched; they keep their stored text and fall back to it
// on the next fetch.
func (h *FieldsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	fieldType := model.FieldType(r.PathValue("type"))
	if !fieldType.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid field type")
		return
	}

	err := store.DeactivateField(r.Context(), h.DB, fieldType, r.PathValue("name"), claims.UserID)
	if errors.Is(err, store.ErrFieldNotFound) {
		jsonError(w, http.StatusNotFound, "field not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete field")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "field deleted"})
}
