package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/overlay/pkg/cache"
	"github.com/matzehuels/overlay/pkg/scenario"
)

const menuScenario = `
name = "menu"

[[trigger]]
name = "menu"
action = ["click"]
rect = [1, 0, 4, 1]
popup = "Open"

[[step]]
do = "click"
target = "menu"
`

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	NewRouter(Config{}).ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Server"), "overlay/") {
		t.Errorf("Server header = %q", rec.Header().Get("Server"))
	}
}

func TestPlacements(t *testing.T) {
	rec := do(t, http.MethodGet, "/placements", "")
	var list []placementEntry
	decode(t, rec, &list)
	if len(list) != 12 {
		t.Errorf("got %d placements, want 12", len(list))
	}

	rec = do(t, http.MethodGet, "/placements/bottomLeft", "")
	var one placementEntry
	decode(t, rec, &one)
	if one.Points != [2]string{"tl", "bl"} {
		t.Errorf("bottomLeft points = %v", one.Points)
	}

	rec = do(t, http.MethodGet, "/placements/diagonal", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown placement status = %d", rec.Code)
	}
}

func TestSimulate(t *testing.T) {
	rec := do(t, http.MethodPost, "/simulate", menuScenario)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var tr scenario.Trace
	decode(t, rec, &tr)
	if s, ok := tr.Final("menu"); !ok || !s.Visible {
		t.Errorf("menu = %+v", s)
	}
	if got := tr.Notifications["menu"].Changes; len(got) != 1 || !got[0] {
		t.Errorf("changes = %v", got)
	}
}

func TestSimulateInvalid(t *testing.T) {
	rec := do(t, http.MethodPost, "/simulate", "[[step]]\ndo = \"jump\"\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.Code != "INVALID_SCENARIO" || !strings.Contains(resp.Detail, "jump") {
		t.Errorf("error = %+v", resp)
	}
}

func TestGraph(t *testing.T) {
	rec := do(t, http.MethodPost, "/graph?format=dot", menuScenario)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); !strings.Contains(body, `"menu"`) || !strings.Contains(body, "lightblue") {
		t.Errorf("DOT = %s", body)
	}

	rec = do(t, http.MethodPost, "/graph?format=png", menuScenario)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported format status = %d", rec.Code)
	}
}

func TestGraphCache(t *testing.T) {
	mem := cache.NewMemory(8)
	router := NewRouter(Config{Cache: mem})
	post := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(menuScenario)))
		return rec
	}

	first := post("/graph?format=dot")
	if got := first.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	second := post("/graph?format=dot")
	if got := second.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached graph should match the rendered one")
	}
	if got := second.Header().Get("Content-Type"); got != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", got)
	}

	declared := post("/graph?format=dot&run=false")
	if declared.Header().Get("X-Cache") != "miss" || strings.Contains(declared.Body.String(), "lightblue") {
		t.Error("run=false should render a separate, unmarked graph")
	}
	if mem.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", mem.Len())
	}
}
