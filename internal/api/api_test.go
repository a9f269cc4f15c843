package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anakralj/vitrina/internal/blob"
	"github.com/anakralj/vitrina/internal/db"
	"github.com/anakralj/vitrina/internal/inventory"
	"github.com/anakralj/vitrina/internal/model"
	"github.com/anakralj/vitrina/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	database := db.NewTestDB(t)
	photos, err := blob.NewDisk(t.TempDir(), "/photos")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	sync := inventory.NewSynchronizer(&store.SQL{DB: database}, nil)

	server := httptest.NewServer(NewRouter(database, testJWTSecret, sync, photos))
	t.Cleanup(server.Close)

	// Register the test account through the API and keep its session token.
	body, _ := json.Marshal(map[string]string{
		"email":    "collector@example.com",
		"password": "correct horse",
	})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&session)
	if session.Token == "" {
		t.Fatal("empty token from register")
	}
	return server, session.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"email":    "collector@example.com",
		"password": "another pass",
	})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "collector@example.com", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{"email": "collector@example.com", "password": "correct horse"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for good login, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/items")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestItemsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Custom category, then an item filed under it.
	req, _ := authRequest("POST", server.URL+"/api/fields", token, map[string]string{
		"field_type": "category",
		"name":       "Depression Glass",
	})
	doJSON(t, req, http.StatusCreated, nil)

	var created model.InventoryItem
	req, _ = authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":          "Pink Bowl",
		"category":      "Depression Glass",
		"quantity":      2,
		"current_value": 40,
	})
	doJSON(t, req, http.StatusCreated, &created)
	if created.CategoryID == nil {
		t.Error("expected category resolved to an ID")
	}
	if created.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", created.Quantity)
	}

	// Fractional quantities are rejected.
	req, _ = authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Half Bowl", "quantity": 1.5,
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for fractional quantity, got %d", resp.StatusCode)
	}

	var items []model.InventoryItem
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	doJSON(t, req, http.StatusOK, &items)
	if len(items) != 1 || items[0].Category != "Depression Glass" {
		t.Fatalf("unexpected item list: %+v", items)
	}

	// Archive moves the item between views.
	req, _ = authRequest("POST", server.URL+"/api/items/"+created.ID+"/archive", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	doJSON(t, req, http.StatusOK, &items)
	if len(items) != 0 {
		t.Errorf("expected empty active view, got %d items", len(items))
	}
	req, _ = authRequest("GET", server.URL+"/api/items?view=archived", token, nil)
	doJSON(t, req, http.StatusOK, &items)
	if len(items) != 1 {
		t.Errorf("expected one archived item, got %d", len(items))
	}

	req, _ = authRequest("POST", server.URL+"/api/items/"+created.ID+"/restore", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	// Valuations were recorded for the initial value.
	var valuations []model.Valuation
	req, _ = authRequest("GET", server.URL+"/api/items/"+created.ID+"/valuations", token, nil)
	doJSON(t, req, http.StatusOK, &valuations)
	if len(valuations) != 1 {
		t.Errorf("expected one valuation, got %d", len(valuations))
	}
}

func TestFavoriteToggleEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	var created model.InventoryItem
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Goblet", "quantity": 1,
	})
	doJSON(t, req, http.StatusCreated, &created)

	var result map[string]bool
	req, _ = authRequest("POST", server.URL+"/api/items/"+created.ID+"/favorite", token, map[string]bool{
		"current": false,
	})
	doJSON(t, req, http.StatusOK, &result)
	if !result["favorite"] {
		t.Error("expected favorite confirmed true")
	}

	req, _ = authRequest("POST", server.URL+"/api/items/"+created.ID+"/favorite", token, map[string]bool{
		"current": true,
	})
	doJSON(t, req, http.StatusOK, &result)
	if result["favorite"] {
		t.Error("expected favorite confirmed false")
	}
}

func TestFieldsAPIDuplicate(t *testing.T) {
	server, token := setupTestServer(t)

	body := map[string]string{"field_type": "category", "name": "Milk Glass"}
	req, _ := authRequest("POST", server.URL+"/api/fields", token, body)
	doJSON(t, req, http.StatusCreated, nil)

	// Same name, different case.
	req, _ = authRequest("POST", server.URL+"/api/fields", token, map[string]string{
		"field_type": "category", "name": "MILK GLASS",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate field, got %d", resp.StatusCode)
	}
}

func TestSharedCollectionRedaction(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":          "Vase",
		"quantity":      1,
		"current_value": 120,
		"location":      "Top shelf",
		"description":   "Chip on base",
	})
	doJSON(t, req, http.StatusCreated, nil)

	var link model.ShareLink
	req, _ = authRequest("POST", server.URL+"/api/shares", token, map[string]bool{
		"show_values":    false,
		"show_locations": false,
		"show_notes":     true,
	})
	doJSON(t, req, http.StatusCreated, &link)

	// The public view needs no token.
	resp, err := http.Get(server.URL + "/api/shared/" + link.ShareID)
	if err != nil {
		t.Fatalf("public view: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var view struct {
		Items []map[string]any `json:"items"`
	}
	json.NewDecoder(resp.Body).Decode(&view)
	if len(view.Items) != 1 {
		t.Fatalf("expected one shared item, got %d", len(view.Items))
	}
	item := view.Items[0]
	if _, ok := item["current_value"]; ok {
		t.Error("expected value redacted")
	}
	if _, ok := item["location"]; ok {
		t.Error("expected location redacted")
	}
	if item["description"] != "Chip on base" {
		t.Errorf("expected notes visible, got %v", item["description"])
	}

	// Deactivating the link kills the public view.
	req, _ = authRequest("DELETE", server.URL+"/api/shares/"+link.ID, token, nil)
	doJSON(t, req, http.StatusOK, nil)

	resp, _ = http.Get(server.URL + "/api/shared/" + link.ShareID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after deactivation, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Bowl", "quantity": 2, "current_value": 40, "favorite": true,
	})
	doJSON(t, req, http.StatusCreated, nil)

	var stats model.CollectionStats
	req, _ = authRequest("GET", server.URL+"/api/stats", token, nil)
	doJSON(t, req, http.StatusOK, &stats)
	if stats.ItemCount != 1 || stats.FavoriteCount != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TotalValue.IntPart() != 80 {
		t.Errorf("expected total value 80, got %s", stats.TotalValue)
	}
}
