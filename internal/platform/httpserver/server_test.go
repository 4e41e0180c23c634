package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	cpiengine "cpindex/contexts/governance/cpi-engine"
	cpientities "cpindex/contexts/governance/cpi-engine/domain/entities"
	apikeyservice "cpindex/contexts/identity-access/apikey-service"
	apikeyhttp "cpindex/contexts/identity-access/apikey-service/transport/http"
)

func newTestServer(t *testing.T) (*Server, cpiengine.Module, apikeyservice.Module) {
	t.Helper()
	cpiModule := cpiengine.NewInMemoryModule(nil)
	apikeyModule := apikeyservice.NewInMemoryModule(nil)
	return New(cpiModule, apikeyModule, nil, ":0"), cpiModule, apikeyModule
}

func issueKey(t *testing.T, handler http.Handler, owner string, rateLimit int) string {
	t.Helper()
	body, _ := json.Marshal(apikeyhttp.IssueKeyRequest{Owner: owner, RateLimit: rateLimit})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/api-keys", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue key returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp apikeyhttp.APIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode issue response: %v", err)
	}
	return resp.Key
}

func seedSnapshot(module cpiengine.Module) {
	module.Store.SetSnapshot("2024-08-01", []cpientities.DelegateSnapshot{
		{DelegateID: "0xabc", VotingPower: map[string]string{"th_vp": "100"}},
	})
}

func TestAuthRejections(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
	req.Header.Set("X-API-Key", "ak_bogus")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with unknown key, got %d", rec.Code)
	}
}

func TestSeriesEndpoint(t *testing.T) {
	server, cpiModule, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 100)

	req := httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no snapshots, got %d: %s", rec.Code, rec.Body.String())
	}

	seedSnapshot(cpiModule)
	req = httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
	req.Header.Set("X-API-Key", key)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Fatalf("expected limit header 100, got %q", got)
	}
	remaining, err := strconv.Atoi(rec.Header().Get("X-RateLimit-Remaining"))
	if err != nil || remaining >= 100 {
		t.Fatalf("expected decremented remaining header, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	var resp struct {
		Results []struct {
			Date string  `json:"date"`
			CPI  float64 `json:"cpi"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode series response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Date != "2024-08-01" {
		t.Fatalf("unexpected series payload %s", rec.Body.String())
	}
	if resp.Results[0].CPI <= 0 {
		t.Fatalf("expected positive index, got %f", resp.Results[0].CPI)
	}
}

func TestUnknownEpochRejected(t *testing.T) {
	server, cpiModule, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 100)
	seedSnapshot(cpiModule)

	req := httptest.NewRequest(http.MethodGet, "/api/cpi?epoch=season-99", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown epoch, got %d", rec.Code)
	}
}

func TestRateLimitDenial(t *testing.T) {
	server, cpiModule, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 2)
	seedSnapshot(cpiModule)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d within limit returned %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cpi", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on denial")
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected remaining 0 on denial, got %q", got)
	}
}

func TestSimulateRequiresAddresses(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 100)

	req := httptest.NewRequest(http.MethodGet, "/api/cpi/simulate?delegatorAddress=0xabc", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without toAddress, got %d", rec.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "Both fromAddress and toAddress are required" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestHistoricEndpoint(t *testing.T) {
	server, cpiModule, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 100)

	if err := cpiModule.Store.Upsert(context.Background(), cpientities.DateResult{Date: "2024-08-01", CPI: 42}); err != nil {
		t.Fatalf("seed historic: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/historic-cpi?date=2024-08-01", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/historic-cpi?date=2099-01-01", nil)
	req.Header.Set("X-API-Key", key)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing date, got %d", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Message != "No data found for the specified date" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestUsageEndpoint(t *testing.T) {
	server, cpiModule, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 10)
	seedSnapshot(cpiModule)

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp apikeyhttp.UsageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode usage response: %v", err)
	}
	if resp.Owner != "team" || resp.RateLimit != 10 {
		t.Fatalf("unexpected usage identity %+v", resp)
	}
	// The usage request itself was admitted through the limiter.
	if resp.CurrentUsage != 1 {
		t.Fatalf("expected current usage 1, got %d", resp.CurrentUsage)
	}
}

func TestAdminKeyLookup(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()
	key := issueKey(t, handler, "team", 10)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/api-keys?owner=team", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp apikeyhttp.APIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode key response: %v", err)
	}
	if resp.Key != key {
		t.Fatalf("expected owner lookup to return issued key")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/api-keys?owner=nobody", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown owner, got %d", rec.Code)
	}
}
