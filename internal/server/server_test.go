package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"airtech/internal/app"
	"airtech/pkg/domain"
	"airtech/pkg/storage"
	"airtech/pkg/store"
)

type stubGenerator struct {
	response string
	err      error
}

func (g stubGenerator) GenerateGroundedText(context.Context, string) (string, error) {
	return g.response, g.err
}

func newTestServer(t *testing.T, gen stubGenerator) *httptest.Server {
	return newTestServerWithArchive(t, gen, nil)
}

func newTestServerWithArchive(t *testing.T, gen stubGenerator, archive storage.ReportArchive) *httptest.Server {
	t.Helper()
	r := miniredis.RunT(t)
	a, err := app.New(app.Config{
		Store:     store.NewMemoryStore(),
		Sessions:  store.NewRedisSessionStore(r.Addr(), "", time.Hour),
		Generator: gen,
		Archive:   archive,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ts := httptest.NewServer(New(Config{App: a}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signup(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/signup", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	decodeInto(t, resp, &body)
	if body.Token == "" {
		t.Fatal("signup returned empty token")
	}
	if body.Email == "" {
		t.Fatal("signup returned empty email")
	}
	return body.Token
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestAuthLifecycle(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	token := signup(t, ts, "a@x.com", "secret1")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/me", token, nil)
	var me struct {
		Email string `json:"email"`
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	decodeInto(t, resp, &me)
	if me.Email != "a@x.com" {
		t.Fatalf("me email = %q", me.Email)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/logout", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d", resp.StatusCode)
	}

	// Normalized credentials resolve to the same account, and the
	// response reports the normalized email next to the token.
	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "A@X.com ",
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	decodeInto(t, resp, &login)
	if login.Token == "" || login.Email != "a@x.com" {
		t.Fatalf("unexpected login response: %+v", login)
	}
}

func TestWrongMethodIsRejected(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	token := signup(t, ts, "a@x.com", "secret1")

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/auth/signup"},
		{http.MethodGet, "/auth/login"},
		{http.MethodGet, "/auth/logout"},
		{http.MethodPost, "/api/me"},
		{http.MethodDelete, "/api/profiles"},
		{http.MethodGet, "/api/leads/search"},
		{http.MethodGet, "/api/leads/export"},
	}
	for _, tc := range cases {
		resp := doJSON(t, tc.method, ts.URL+tc.path, token, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	for _, path := range []string{"/api/me", "/api/profiles", "/api/leads/search", "/api/leads/export"} {
		resp := doJSON(t, http.MethodPost, ts.URL+path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token: status = %d", path, resp.StatusCode)
		}
	}
}

func TestProfileCreateAndList(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	token := signup(t, ts, "a@x.com", "secret1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/profiles", token, map[string]any{
		"name": "alpha",
		"profile": domain.CompanyProfile{
			Sector:        "SaaS",
			Country:       "Brazil",
			EmailApproach: domain.ApproachFriendly,
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create profile status = %d", resp.StatusCode)
	}
	var saved domain.SavedProfile
	decodeInto(t, resp, &saved)
	if saved.ID == "" || saved.Name != "alpha" {
		t.Fatalf("unexpected saved profile: %+v", saved)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/profiles", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list profiles status = %d", resp.StatusCode)
	}
	var list struct {
		Profiles []domain.SavedProfile `json:"profiles"`
	}
	decodeInto(t, resp, &list)
	if len(list.Profiles) != 1 || list.Profiles[0].ID != saved.ID {
		t.Fatalf("unexpected profile list: %+v", list.Profiles)
	}

	// Missing name gets rejected before hitting storage.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/profiles", token, map[string]any{
		"profile": domain.CompanyProfile{Sector: "SaaS"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nameless profile status = %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	gen := stubGenerator{response: "```json\n[{\"report\": {\"companyName\": \"Acme\"}, \"email\": \"hello\"}]\n```"}
	ts := newTestServer(t, gen)
	token := signup(t, ts, "a@x.com", "secret1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/leads/search", token, map[string]any{"profileIds": []string{}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty selection status = %d", resp.StatusCode)
	}

	create := doJSON(t, http.MethodPost, ts.URL+"/api/profiles", token, map[string]any{
		"name": "alpha",
		"profile": domain.CompanyProfile{
			Sector:        "SaaS",
			Country:       "Brazil",
			EmailApproach: domain.ApproachProfessional,
		},
	})
	var saved domain.SavedProfile
	decodeInto(t, create, &saved)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/leads/search", token, map[string]any{
		"profileIds": []string{saved.ID},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}
	var result struct {
		Leads []domain.Lead `json:"leads"`
	}
	decodeInto(t, resp, &result)
	if len(result.Leads) != 1 || result.Leads[0].Report.CompanyName != "Acme" {
		t.Fatalf("unexpected search result: %+v", result.Leads)
	}
}

func TestSearchEndpointBackendFailure(t *testing.T) {
	ts := newTestServer(t, stubGenerator{err: errors.New("quota exceeded")})
	token := signup(t, ts, "a@x.com", "secret1")

	create := doJSON(t, http.MethodPost, ts.URL+"/api/profiles", token, map[string]any{
		"name": "alpha",
		"profile": domain.CompanyProfile{
			Sector:        "SaaS",
			Country:       "Brazil",
			EmailApproach: domain.ApproachAggressive,
		},
	})
	var saved domain.SavedProfile
	decodeInto(t, create, &saved)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/leads/search", token, map[string]any{
		"profileIds": []string{saved.ID},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("backend failure status = %d", resp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})
	token := signup(t, ts, "a@x.com", "secret1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/leads/export", token, map[string]any{
		"leads": []domain.Lead{
			{Report: domain.LeadReport{CompanyName: "Acme"}, Email: "hello"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "airtech_leads_report.csv") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\uFEFF") {
		t.Fatal("CSV must start with a UTF-8 BOM")
	}
	if !strings.Contains(buf.String(), "\"Acme\"") {
		t.Fatalf("CSV missing quoted company name: %q", buf.String())
	}
	if resp.Header.Get("X-Report-Key") != "" || resp.Header.Get("X-Report-Url") != "" {
		t.Fatal("no archive configured, report headers must be absent")
	}
}

// fakeArchive accepts every upload and links back to it.
type fakeArchive struct{}

func (fakeArchive) Put(context.Context, string, []byte, string) error {
	return nil
}

func (fakeArchive) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.test/" + key, nil
}

func TestExportEndpointArchivesReport(t *testing.T) {
	ts := newTestServerWithArchive(t, stubGenerator{}, fakeArchive{})
	token := signup(t, ts, "a@x.com", "secret1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/leads/export", token, map[string]any{
		"leads": []domain.Lead{
			{Report: domain.LeadReport{CompanyName: "Acme"}, Email: "hello"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	key := resp.Header.Get("X-Report-Key")
	if !strings.HasPrefix(key, "reports/a@x.com/") || !strings.HasSuffix(key, ".csv") {
		t.Fatalf("X-Report-Key = %q", key)
	}
	if link := resp.Header.Get("X-Report-Url"); link != "https://archive.test/"+key {
		t.Fatalf("X-Report-Url = %q", link)
	}
}
