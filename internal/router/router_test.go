package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	t.Setenv("DB_DSN", "")
	srv := httptest.NewServer(NewRouter(opts))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func staffHeaders() map[string]string {
	return map[string]string{"X-Debug-User-ID": "staff-1"}
}

func validCatBody() map[string]any {
	return map[string]any{
		"name":      "Milanesa",
		"gender":    "FEMALE",
		"status":    "NOT_TNRED",
		"latitude":  40.69,
		"longitude": -73.98,
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCats_RequireAuthentication(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/cats", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if body["error"] != "unauthorized" {
		t.Fatalf("body = %v", body)
	}
}

func TestCats_CreateAndReadBack(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/cats", validCatBody(), staffHeaders())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", resp.StatusCode, created)
	}
	catID, _ := created["id"].(string)
	if catID == "" {
		t.Fatalf("created cat has no id: %v", created)
	}
	if created["status"] != "NOT_TNRED" {
		t.Fatalf("status = %v, want NOT_TNRED", created["status"])
	}

	resp, detail := doJSON(t, http.MethodGet, srv.URL+"/cats/"+catID, nil, staffHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	hist, _ := detail["status_history"].([]any)
	if len(hist) != 1 {
		t.Fatalf("expected 1 initial history entry, got %d", len(hist))
	}
	first, _ := hist[0].(map[string]any)
	if first["old_status"] != nil {
		t.Fatalf("initial entry old_status = %v, want null", first["old_status"])
	}
	if first["new_status"] != "NOT_TNRED" {
		t.Fatalf("initial entry new_status = %v", first["new_status"])
	}
}

func TestCats_ValidationNamesField(t *testing.T) {
	srv := newTestServer(t, Options{})

	body := validCatBody()
	body["gender"] = "DOG"
	resp, out := doJSON(t, http.MethodPost, srv.URL+"/cats", body, staffHeaders())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "gender") {
		t.Fatalf("error %q must name the offending field", msg)
	}

	body = validCatBody()
	body["latitude"] = 123.0
	resp, out = doJSON(t, http.MethodPost, srv.URL+"/cats", body, staffHeaders())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "latitude") {
		t.Fatalf("error %q must name the offending field", msg)
	}
}

func TestCats_StatusChangeChain(t *testing.T) {
	srv := newTestServer(t, Options{})

	_, created := doJSON(t, http.MethodPost, srv.URL+"/cats", validCatBody(), staffHeaders())
	catID, _ := created["id"].(string)

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/cats/"+catID+"/status",
		map[string]any{"status": "TNRED", "notes": "trapped, neutered, released"}, staffHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change status = %d, body %v", resp.StatusCode, out)
	}
	entry, _ := out["entry"].(map[string]any)
	if entry["old_status"] != "NOT_TNRED" || entry["new_status"] != "TNRED" {
		t.Fatalf("entry = %v", entry)
	}

	// repetir el mismo estado no agrega entrada
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/cats/"+catID+"/status",
		map[string]any{"status": "TNRED"}, staffHeaders())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("no-op status = %d, want 400", resp.StatusCode)
	}

	resp, hist := doJSON(t, http.MethodGet, srv.URL+"/cats/"+catID, nil, staffHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	entries, _ := hist["status_history"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	newest, _ := entries[0].(map[string]any)
	if newest["new_status"] != hist["status"] {
		t.Fatalf("cat status %v != newest entry %v", hist["status"], newest["new_status"])
	}
}

func TestCats_Stats(t *testing.T) {
	srv := newTestServer(t, Options{})

	doJSON(t, http.MethodPost, srv.URL+"/cats", validCatBody(), staffHeaders())
	b := validCatBody()
	b["status"] = "TNRED"
	doJSON(t, http.MethodPost, srv.URL+"/cats", b, staffHeaders())

	resp, stats := doJSON(t, http.MethodGet, srv.URL+"/cats/stats", nil, staffHeaders())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	if stats["NOT_TNRED"] != float64(1) || stats["TNRED"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}
}

// Una cuenta sin aprobar no pasa la compuerta aunque diga ser admin,
// y la respuesta no distingue el motivo.
func TestGate_UnapprovedAccountGetsGenericForbidden(t *testing.T) {
	srv := newTestServer(t, Options{})

	headers := map[string]string{
		"X-Debug-User-ID": "staff-1",
		"X-Debug-Admin":   "true",
		"X-Debug-Status":  "PENDING",
	}
	for _, path := range []string{"/cats", "/admin/users"} {
		resp, body := doJSON(t, http.MethodGet, srv.URL+path, nil, headers)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("GET %s = %d, want 403", path, resp.StatusCode)
		}
		if body["error"] != "forbidden" {
			t.Fatalf("GET %s body = %v, want generic forbidden", path, body)
		}
	}
}

func TestGate_AdminRoutes(t *testing.T) {
	srv := newTestServer(t, Options{})

	// staff aprobado pero no admin
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/admin/users", nil, staffHeaders())
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin = %d, want 403", resp.StatusCode)
	}

	admin := map[string]string{"X-Debug-User-ID": "admin-1", "X-Debug-Admin": "true"}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/users", nil)
	for k, v := range admin {
		req.Header.Set(k, v)
	}
	aresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /admin/users: %v", err)
	}
	defer aresp.Body.Close()
	if aresp.StatusCode != http.StatusOK {
		t.Fatalf("admin = %d, want 200", aresp.StatusCode)
	}
}

// Con JWT_SECRET el flujo completo corre contra el store: registrarse deja la
// cuenta PENDING y el login queda cortado hasta que un admin la apruebe.
func TestJWTMode_RegisterThenLoginBlockedUntilApproved(t *testing.T) {
	srv := newTestServer(t, Options{
		JWTSecret: "e2e-secret",
		JWTTTL:    time.Hour,
	})

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/auth/register",
		map[string]any{"name": "Vale", "email": "vale@example.com", "password": "super-secreta"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register = %d, body %v", resp.StatusCode, created)
	}
	if created["status"] != "PENDING" {
		t.Fatalf("new account status = %v, want PENDING", created["status"])
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/auth/login",
		map[string]any{"email": "vale@example.com", "password": "super-secreta"}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("login pending = %d, want 403", resp.StatusCode)
	}

	// en modo JWT los headers de debug no cuentan como principal
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/cats", nil, staffHeaders())
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("debug headers in jwt mode = %d, want 401", resp.StatusCode)
	}
}

func TestDevMode_LoginUnavailable(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/auth/login",
		map[string]any{"email": "a@b.com", "password": "super-secreta"}, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("dev login = %d, want 503", resp.StatusCode)
	}
}
