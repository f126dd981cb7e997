package preview

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

func newTestServer(t *testing.T, st store.Store, engineOpts ...statement.Option) *httptest.Server {
	t.Helper()
	opts := append([]statement.Option{statement.WithLogger(logging.NewNoOpLogger())}, engineOpts...)
	engine := statement.NewWithOptions(opts...)

	srv := NewServer(engine, st, DefaultConfig(),
		WithLogger(logging.NewNoOpLogger()),
		WithRegistry(prometheus.NewRegistry()),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(b)
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"healthy"`) {
		t.Fatalf("GET /health = %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("no request ID assigned")
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/health", "", RequestIDHeader, "abc-123")
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want caller's", got)
	}
}

func TestCatalogue(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/catalogue?kind=voucher", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		Kind   string                     `json:"kind"`
		Groups []statement.CatalogueGroup `json:"groups"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != "voucher" || len(got.Groups) != len(statement.VoucherCatalogue()) {
		t.Errorf("catalogue = %+v", got)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/catalogue?kind=invoice", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", resp.StatusCode)
	}
}

func TestTemplateCRUD(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())

	resp, body := do(t, http.MethodPut, ts.URL+"/templates/monthly", `{"kind":"statement","source":"<p>{{user.name}} {{user.nickname}}</p>"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d %s", resp.StatusCode, body)
	}
	var put templateResponse
	if err := json.Unmarshal([]byte(body), &put); err != nil {
		t.Fatal(err)
	}
	if put.Template.Name != "monthly" || put.Template.UpdatedAt.IsZero() {
		t.Errorf("stored template = %+v", put.Template)
	}
	if put.Validation.Valid || len(put.Validation.Warnings) != 1 || put.Validation.Warnings[0].Code != statement.WarnUnknownVariable {
		t.Errorf("validation = %+v", put.Validation)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/templates/monthly", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "user.nickname") {
		t.Errorf("GET = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/templates", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"name":"monthly"`) {
		t.Errorf("LIST = %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/templates/monthly", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/templates/monthly", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", resp.StatusCode)
	}
}

func TestTemplateRequestErrors(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid name", http.MethodPut, "/templates/a.b", `{"source":"x"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPut, "/templates/x", `{`, http.StatusBadRequest},
		{"empty body", http.MethodPut, "/templates/x", ``, http.StatusBadRequest},
		{"unknown field", http.MethodPut, "/templates/x", `{"src":"x"}`, http.StatusBadRequest},
		{"unknown format", http.MethodPut, "/templates/x", `{"format":"pdf"}`, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/templates/nothing", ``, http.StatusNotFound},
		{"method not allowed", http.MethodPost, "/templates/x", `{}`, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestTemplateRoutesWithoutStore(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := do(t, http.MethodGet, ts.URL+"/templates", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestPreviewFallsBackToBuiltin(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())

	resp, body := do(t, http.MethodGet, ts.URL+"/preview/unknown", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get(BuiltinHeader) != "true" || resp.Header.Get(WarningsHeader) != "0" {
		t.Errorf("headers = %v", resp.Header)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Roda Travel", `<tr class="txn-row issue-row">`, "PNR: ABC123"} {
		if !strings.Contains(body, want) {
			t.Errorf("preview missing %q", want)
		}
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/preview/unknown?kind=voucher", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "RV-0001") {
		t.Errorf("voucher preview = %d", resp.StatusCode)
	}
}

func TestPreviewStoredMarkdown(t *testing.T) {
	st := store.NewMemoryStore()
	ts := newTestServer(t, st)

	resp, body := do(t, http.MethodPut, ts.URL+"/templates/notes", `{"format":"markdown","source":"# {{company.name}}\n\n{{#each transactions}}- {{details}} ({{@index}})\n{{/each}}"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/preview/notes", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get(BuiltinHeader) != "false" {
		t.Fatalf("status = %d headers = %v", resp.StatusCode, resp.Header)
	}
	for _, want := range []string{"<h1>Roda Travel</h1>", "<li>", "BGW-IST round trip"} {
		if !strings.Contains(body, want) {
			t.Errorf("preview missing %q:\n%s", want, body)
		}
	}
}

func TestRenderInlineTemplate(t *testing.T) {
	ts := newTestServer(t, nil)

	req := `{
		"template": "{{#each transactions}}<tr class=\"r{{#if (eq type 'DT-ISSUE')}} issue-row{{/if}}\"><td>{{@index}}</td><td>{{debit_iqd}}</td></tr>{{/each}}{{#if user.name}}",
		"data": {"transactions": [{"type": "DT-ISSUE", "debit_iqd": "500,000"}, {"type": "PAYMENT", "debit_iqd": "-"}]}
	}`
	resp, body := do(t, http.MethodPost, ts.URL+"/render", req, "Accept", "application/json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	var got renderResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.HTML, `<tr class="r issue-row"><td>1</td><td>500,000</td></tr><tr class="r"><td>2</td><td>-</td></tr>`) {
		t.Errorf("html = %s", got.HTML)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Code != statement.WarnUnterminatedBlock {
		t.Errorf("warnings = %+v", got.Warnings)
	}

	resp, body = do(t, http.MethodPost, ts.URL+"/render", `{"template":"<p>{{user.name}}</p>"}`)
	if resp.Header.Get("Content-Type") != "text/html; charset=utf-8" || !strings.Contains(body, "<p>Ahmed Kareem</p>") {
		t.Errorf("html render = %q %s", resp.Header.Get("Content-Type"), body)
	}
}

func TestRenderStrictModeRejectsWarnings(t *testing.T) {
	config := statement.DefaultConfig()
	config.StrictMode = true
	ts := newTestServer(t, nil, statement.WithConfig(config))

	resp, body := do(t, http.MethodPost, ts.URL+"/render", `{"template":"{{/each}}"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var got errorResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Code != statement.WarnUnmatchedClose {
		t.Errorf("warnings = %+v", got.Warnings)
	}
}

func TestValidateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/validate", `{"kind":"statement","template":"{{#each transactions}}{{pnr}}{{/each}}"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got statement.ValidationResult
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Valid || got.Kind != statement.KindStatement {
		t.Errorf("result = %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	do(t, http.MethodGet, ts.URL+"/health", "")
	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `preview_http_requests_total{endpoint="/health",method="GET",status="200"} 1`) {
		t.Errorf("metrics missing health counter:\n%s", body)
	}
}

func TestBodyLimit(t *testing.T) {
	engine := statement.NewWithOptions(statement.WithLogger(logging.NewNoOpLogger()))
	config := DefaultConfig()
	config.MaxBodyBytes = 16
	srv := NewServer(engine, nil, config, WithLogger(logging.NewNoOpLogger()))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := do(t, http.MethodPost, ts.URL+"/validate", `{"template":"`+strings.Repeat("x", 64)+`"}`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}
