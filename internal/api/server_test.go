package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/knit"
	"github.com/RowanDark/knitcipher/internal/logging"
)

const (
	testStaticToken = "test-static-token"
	identifySample  = "Meet me near the old oak tree at noon and bring the pattern"
)

type testServer struct {
	*Server
	audit *bytes.Buffer
}

// setupTestServer creates a server over a temporary chart store whose audit
// events are captured in memory.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := chartstore.Open(filepath.Join(t.TempDir(), "charts.db"), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	buf := &bytes.Buffer{}
	server, err := NewServer(Config{
		Addr:            ":0",
		StaticToken:     testStaticToken,
		JWTSecret:       []byte("test-jwt-secret-key-12345"),
		JWTIssuer:       "test-issuer",
		DefaultTokenTTL: time.Hour,
		Store:           store,
		Logger:          logging.MustNewAuditLogger("api", logging.WithoutStdout(), logging.WithWriter(buf)),
		Log:             slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return &testServer{Server: server, audit: buf}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T) http.Header {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/tokens", map[string]any{"subject": "knitter"},
		http.Header{TokenHeader: {testStaticToken}})
	if rec.Code != http.StatusOK {
		t.Fatalf("token issue failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return http.Header{"Authorization": {"Bearer " + resp.Token}}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestNewServerValidation(t *testing.T) {
	store, err := chartstore.Open(filepath.Join(t.TempDir(), "charts.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := Config{Addr: ":0", StaticToken: "s", JWTSecret: []byte("k"), JWTIssuer: "i", Store: store}
	tests := map[string]func(*Config){
		"missing addr":   func(c *Config) { c.Addr = " " },
		"missing store":  func(c *Config) { c.Store = nil },
		"missing token":  func(c *Config) { c.StaticToken = "" },
		"missing secret": func(c *Config) { c.JWTSecret = nil },
		"missing issuer": func(c *Config) { c.JWTIssuer = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if _, err := NewServer(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := NewServer(base); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestHealthzAndRequestID(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	rec = s.do(t, http.MethodGet, "/healthz", nil, http.Header{RequestIDHeader: {"req-42"}})
	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestAlgorithms(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/algorithms", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp struct {
		Algorithms []AlgorithmInfo `json:"algorithms"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Algorithms) != 18 {
		t.Fatalf("expected 18 algorithms, got %d", len(resp.Algorithms))
	}
	if first := resp.Algorithms[0]; first.Code != "C1" || first.Key != cipher.KeyCaesar {
		t.Fatalf("unexpected first algorithm %+v", first)
	}
	if last := resp.Algorithms[17]; last.Code != "C18" || last.Key != cipher.KeyRC4 {
		t.Fatalf("unexpected last algorithm %+v", last)
	}
}

func TestEncrypt(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/encrypt", EncryptRequest{Message: "Hi", Explain: true}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp EncryptResponse
	decodeBody(t, rec, &resp)

	if resp.Code != "C1" || resp.Algorithm != cipher.KeyCaesar {
		t.Fatalf("expected default algorithm caesar/C1, got %s/%s", resp.Algorithm, resp.Code)
	}
	if resp.Ciphertext != "Kl" || resp.Binary != "0100101101101100" {
		t.Fatalf("unexpected ciphertext %q binary %q", resp.Ciphertext, resp.Binary)
	}
	if resp.Rows != 4 || resp.Cols != 4 || strings.Join(resp.Grid, "/") != "0100/1011/0110/1100" {
		t.Fatalf("unexpected grid %dx%d %v", resp.Rows, resp.Cols, resp.Grid)
	}
	if resp.Policy != "single" || resp.Iterations != 1 {
		t.Fatalf("unexpected policy %s iterations %d", resp.Policy, resp.Iterations)
	}
	if len(resp.Steps) == 0 {
		t.Fatal("expected explanation steps")
	}
	if strings.Contains(s.audit.String(), `"Hi"`) {
		t.Fatalf("plaintext leaked into audit log: %s", s.audit.String())
	}
	if !strings.Contains(s.audit.String(), "chart_encrypt") {
		t.Fatalf("expected encrypt audit event, got %s", s.audit.String())
	}
}

func TestEncryptErrorStatusCodes(t *testing.T) {
	s := setupTestServer(t)
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"unknown field", `{"message":"hi","colour":"red"}`, http.StatusBadRequest},
		{"empty message", EncryptRequest{Algorithm: cipher.KeyCaesar}, http.StatusBadRequest},
		{"unknown algorithm", EncryptRequest{Message: "hi", Algorithm: "enigma"}, http.StatusBadRequest},
		{"nothing to chart", EncryptRequest{Message: "123", Algorithm: cipher.KeyPlayfair}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/encrypt", tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["error"] == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestDecrypt(t *testing.T) {
	s := setupTestServer(t)
	tests := []struct {
		name   string
		req    DecryptRequest
		status int
		text   string
	}{
		{"caesar", DecryptRequest{Binary: "0100 1011 0110 1100", Code: "c1"}, http.StatusOK, "Hi"},
		{"unknown code", DecryptRequest{Binary: "0100101101101100", Code: "C99"}, http.StatusUnprocessableEntity, cipher.InvalidCode},
		{"bad payload", DecryptRequest{Binary: "0010101000101010", Code: "C7"}, http.StatusUnprocessableEntity, cipher.DecryptionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/decrypt", tt.req, nil)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp DecryptResponse
			decodeBody(t, rec, &resp)
			if resp.Text != tt.text {
				t.Fatalf("expected %q, got %q", tt.text, resp.Text)
			}
		})
	}

	rec := s.do(t, http.MethodPost, "/api/v1/decrypt", DecryptRequest{Binary: "xyz", Code: "C1"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty binary, got %d", rec.Code)
	}
	if strings.Contains(s.audit.String(), `"Hi"`) {
		t.Fatalf("recovered text leaked into audit log: %s", s.audit.String())
	}
}

func TestIdentify(t *testing.T) {
	s := setupTestServer(t)
	res, err := knit.Encrypt(identifySample, cipher.KeyCaesar, false)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	rec := s.do(t, http.MethodPost, "/api/v1/identify", IdentifyRequest{Binary: res.Binary}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp IdentifyResponse
	decodeBody(t, rec, &resp)
	if len(resp.Candidates) == 0 {
		t.Fatal("expected candidates")
	}
	if best := resp.Candidates[0]; best.Code != "C1" || best.Text != identifySample {
		t.Fatalf("unexpected best candidate %+v", best)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/identify", IdentifyRequest{Binary: "  "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty binary, got %d", rec.Code)
	}
}

func TestPipeline(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/pipeline", PipelineRequest{
		Input:      "abc",
		Algorithms: []string{cipher.KeyCaesar, cipher.KeyReverse},
	}, nil)
	var resp PipelineResponse
	decodeBody(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.Output != "fed" {
		t.Fatalf("unexpected encode result %d %q", rec.Code, resp.Output)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/pipeline", PipelineRequest{
		Input:      "fed",
		Algorithms: []string{cipher.KeyCaesar, cipher.KeyReverse},
		Reverse:    true,
	}, nil)
	decodeBody(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.Output != "abc" {
		t.Fatalf("unexpected decode result %d %q", rec.Code, resp.Output)
	}

	for _, req := range []PipelineRequest{{Input: "x"}, {Input: "x", Algorithms: []string{"enigma"}}} {
		rec = s.do(t, http.MethodPost, "/api/v1/pipeline", req, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", req, rec.Code)
		}
	}
}

func TestTokenIssue(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/tokens", map[string]any{"subject": "knitter"},
		http.Header{TokenHeader: {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(s.audit.String(), "auth_denied") {
		t.Fatal("expected auth_denied audit event")
	}

	rec = s.do(t, http.MethodPost, "/api/v1/tokens", map[string]any{}, http.Header{TokenHeader: {testStaticToken}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without subject, got %d", rec.Code)
	}

	header := s.token(t)
	claims, err := s.authenticator.Validate(strings.TrimPrefix(header.Get("Authorization"), "Bearer "))
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Subject != "knitter" || claims.Issuer != "test-issuer" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestChartsRequireJWT(t *testing.T) {
	s := setupTestServer(t)
	for _, header := range []http.Header{nil, {"Authorization": {"Bearer nope"}}, {"Authorization": {"Basic abc"}}} {
		rec := s.do(t, http.MethodGet, "/api/v1/charts", nil, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %v, got %d", header, rec.Code)
		}
	}
}

func TestChartLifecycle(t *testing.T) {
	s := setupTestServer(t)
	auth := s.token(t)

	rec := s.do(t, http.MethodPost, "/api/v1/charts", SaveChartRequest{Message: "Hi", Label: " scarf "}, auth)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save failed: %d %s", rec.Code, rec.Body.String())
	}
	var saved chartstore.Chart
	decodeBody(t, rec, &saved)
	if saved.ID == "" || saved.CID == "" || saved.Label != "scarf" || saved.Binary != "0100101101101100" {
		t.Fatalf("unexpected saved chart %+v", saved)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/charts", SaveChartRequest{Message: "Hi"}, auth)
	var again chartstore.Chart
	decodeBody(t, rec, &again)
	if again.ID != saved.ID {
		t.Fatalf("same pattern should not be stored twice, got %s and %s", saved.ID, again.ID)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/charts?algorithm=caesar&limit=10", nil, auth)
	var list struct {
		Charts []chartstore.Chart `json:"charts"`
	}
	decodeBody(t, rec, &list)
	if rec.Code != http.StatusOK || len(list.Charts) != 1 {
		t.Fatalf("expected one chart, got %d %+v", rec.Code, list.Charts)
	}
	if rec = s.do(t, http.MethodGet, "/api/v1/charts?limit=x", nil, auth); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/charts/"+saved.ID, nil, auth)
	var got chartstore.Chart
	decodeBody(t, rec, &got)
	if rec.Code != http.StatusOK || got.ID != saved.ID {
		t.Fatalf("unexpected get result %d %+v", rec.Code, got)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/charts/"+saved.ID+"/export?format=csv", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "row,1,2,3,4") {
		t.Fatalf("unexpected csv export %q", rec.Body.String())
	}
	if rec = s.do(t, http.MethodGet, "/api/v1/charts/"+saved.ID+"/export?format=pdf", nil, auth); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}

	if rec = s.do(t, http.MethodDelete, "/api/v1/charts/"+saved.ID, nil, auth); rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", rec.Code)
	}
	if rec = s.do(t, http.MethodGet, "/api/v1/charts/"+saved.ID, nil, auth); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if rec = s.do(t, http.MethodDelete, "/api/v1/charts/"+saved.ID, nil, auth); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", rec.Code)
	}

	log := s.audit.String()
	for _, event := range []string{"token_issue", "chart_saved", "chart_exported", "chart_deleted"} {
		if !strings.Contains(log, event) {
			t.Errorf("expected %s audit event", event)
		}
	}
	if !strings.Contains(log, `"subject":"knitter"`) {
		t.Error("chart events should carry the token subject")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := setupTestServer(t)
	auth := s.token(t)

	tests := []struct {
		method string
		path   string
		header http.Header
		code   int
		msg    string
	}{
		{http.MethodGet, "/api/v1/encrypt", nil, http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodDelete, "/api/v1/algorithms", nil, http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodPost, "/healthz", nil, http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodPut, "/api/v1/charts/01HX0000000000000000000000", auth, http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodDelete, "/api/v1/charts", auth, http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodGet, "/api/v1/nope", nil, http.StatusNotFound, "not found"},
		{http.MethodGet, "/nope", nil, http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, nil, tt.header)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] != tt.msg {
				t.Fatalf("expected error %q, got %q", tt.msg, body["error"])
			}
		})
	}
}
