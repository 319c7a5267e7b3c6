// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/fwpolicy/internal/auth"
)

const testConfig = `
config firewall address
edit "OBJ1"
set subnet 10.0.0.1 255.255.255.255
next
end
config firewall policy
edit 1
set srcintf "any"
set dstintf "any"
set srcaddr "OBJ1"
set dstaddr "all"
set action accept
set service "ALL"
next
end
`

func newTestRouter(t *testing.T, a *API) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	a.RegisterRoutes(router)
	return router
}

func TestHandleHealthz(t *testing.T) {
	a := New(nil, nil, false, nil)
	router := newTestRouter(t, a)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleJobWithoutAuthConfigured(t *testing.T) {
	a := New(nil, nil, false, NewMetrics(prometheus.NewRegistry()))
	router := newTestRouter(t, a)

	body, _ := json.Marshal(jobRequest{
		Config:           testConfig,
		FlattenAddresses: true,
		FlattenServices:  true,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Errorf("expected a job id")
	}
	if !strings.Contains(resp.Flattened, "accept") {
		t.Errorf("expected flattened CSV to contain the accept row, got %q", resp.Flattened)
	}
}

func TestHandleJobRejectsMissingTokenWhenRequired(t *testing.T) {
	dir := t.TempDir()
	tokens, err := auth.NewStore(filepath.Join(dir, "tokens.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	plaintext, err := tokens.Issue("ci")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	a := New(nil, tokens, true, nil)
	router := newTestRouter(t, a)

	body, _ := json.Marshal(jobRequest{Config: testConfig})

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer "+plaintext)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleJobMalformedBody(t *testing.T) {
	a := New(nil, nil, false, nil)
	router := newTestRouter(t, a)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
