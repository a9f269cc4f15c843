package api

import (
	"database/sql"
	"net/http"

	"github.com/anakralj/vitrina/internal/blob"
	"github.com/anakralj/vitrina/internal/inventory"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, sync *inventory.Synchronizer, photos *blob.Disk) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db, Sync: sync, Photos: photos}
	fieldsHandler := &FieldsHandler{DB: db}
	sharesHandler := &SharesHandler{DB: db, Sync: sync}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: account creation, login and shared collection views.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/shared/{share_id}", sharesHandler.Public)

	// Session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("POST /api/items/{id}/archive", authMW(http.HandlerFunc(itemsHandler.Archive)))
	mux.Handle("POST /api/items/{id}/restore", authMW(http.HandlerFunc(itemsHandler.Restore)))
	mux.Handle("POST /api/items/{id}/favorite", authMW(http.HandlerFunc(itemsHandler.Favorite)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/items/{id}/valuations", authMW(http.HandlerFunc(itemsHandler.Valuations)))

	// Valuations and stats.
	mux.Handle("GET /api/valuations", authMW(http.HandlerFunc(itemsHandler.RecentValuations)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(itemsHandler.Stats)))

	// Custom taxonomy fields.
	mux.Handle("GET /api/fields", authMW(http.HandlerFunc(fieldsHandler.List)))
	mux.Handle("POST /api/fields", authMW(http.HandlerFunc(fieldsHandler.Create)))
	mux.Handle("DELETE /api/fields/{type}/{name}", authMW(http.HandlerFunc(fieldsHandler.Delete)))

	// Share links.
	mux.Handle("GET /api/shares", authMW(http.HandlerFunc(sharesHandler.List)))
	mux.Handle("POST /api/shares", authMW(http.HandlerFunc(sharesHandler.Create)))
	mux.Handle("PUT /api/shares/{id}", authMW(http.HandlerFunc(sharesHandler.Update)))
	mux.Handle("DELETE /api/shares/{id}", authMW(http.HandlerFunc(sharesHandler.Delete)))

	// Stored photos are served directly from disk.
	mux.Handle("GET "+photos.URLPrefix+"/", http.StripPrefix(photos.URLPrefix+"/",
		http.FileServer(http.Dir(photos.Root))))

	return mux
}
