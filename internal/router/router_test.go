package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/handler"
	"github.com/iliyamo/directory-admin/internal/middleware"
	q "github.com/iliyamo/directory-admin/internal/queue"
	"github.com/iliyamo/directory-admin/internal/repository"
	"github.com/iliyamo/directory-admin/internal/service"
	"github.com/iliyamo/directory-admin/internal/session"
	"github.com/iliyamo/directory-admin/internal/settings"
)

// upstream is a fake platform backend holding companies in memory.
type upstream struct {
	mu        sync.Mutex
	companies []map[string]any
	expired   bool
	deleted   []string
	uploads   int
	failAt    int // 1-based upload that fails; 0 never
	listDown  bool
	creates   int
}

func (u *upstream) authed(w http.ResponseWriter, r *http.Request) bool {
	u.mu.Lock()
	expired := u.expired
	u.mu.Unlock()
	if expired || r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
		return false
	}
	return true
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"tokens":{"access_token":"tok","refresh_token":"ref"},"user":{"id":1,"username":"admin","role":"admin"}}}`)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		if u.authed(w, r) {
			_, _ = io.WriteString(w, `{"data":{"id":1,"username":"admin","role":"admin"}}`)
		}
	})
	mux.HandleFunc("GET /company", func(w http.ResponseWriter, r *http.Request) {
		if !u.authed(w, r) {
			return
		}
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.listDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"message":"Listing unavailable"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"companies": u.companies}})
	})
	mux.HandleFunc("POST /company", func(w http.ResponseWriter, r *http.Request) {
		if !u.authed(w, r) {
			return
		}
		var c map[string]any
		_ = json.NewDecoder(r.Body).Decode(&c)
		u.mu.Lock()
		u.creates++
		c["id"] = len(u.companies) + 1
		u.companies = append(u.companies, c)
		u.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": c})
	})
	mux.HandleFunc("DELETE /company/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !u.authed(w, r) {
			return
		}
		id := r.PathValue("id")
		u.mu.Lock()
		defer u.mu.Unlock()
		for i, c := range u.companies {
			if fmt.Sprint(c["id"]) == id {
				u.companies = append(u.companies[:i], u.companies[i+1:]...)
				u.deleted = append(u.deleted, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Company not found"}`)
	})
	mux.HandleFunc("POST /company/{id}/images", func(w http.ResponseWriter, r *http.Request) {
		if !u.authed(w, r) {
			return
		}
		u.mu.Lock()
		u.uploads++
		n := u.uploads
		fail := u.failAt
		u.mu.Unlock()
		if n == fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"Storage down"}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"data":{"id":"img%d","url":"https://cdn/img%d","index":%s,"isMain":%s}}`,
			n, n, r.FormValue("index"), r.FormValue("isMain"))
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		if u.authed(w, r) {
			_, _ = io.WriteString(w, `{"categories":[{"id":1,"name":"Food"},{"id":2,"name":"Pizza","parentId":1}]}`)
		}
	})
	mux.HandleFunc("GET /resource-categories", func(w http.ResponseWriter, r *http.Request) {
		if u.authed(w, r) {
			_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"A","parentId":2},{"id":2,"name":"B","parentId":1},{"id":3,"name":"C"}]}`)
		}
	})
	return mux
}

func seed(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{"id": i, "name": fmt.Sprintf("Company %d", i)})
	}
	return out
}

type console struct {
	con *handler.Console
	e   *echo.Echo
	up  *upstream
	reg *settings.Registry
}

func newConsole(t *testing.T, companies int) *console {
	t.Helper()
	up := &upstream{companies: seed(companies)}
	srv := httptest.NewServer(up.handler())
	t.Cleanup(srv.Close)

	api := apiclient.NewWithHTTPClient(srv.URL, srv.Client())
	mgr := session.NewManager(api, repository.NewMemoryStore(), "test-secret", time.Hour)
	con := handler.NewConsole(api, mgr)
	reg := settings.NewRegistry(repository.NewMemoryStore())
	con.Settings = reg
	con.MapAPIKey = "map-key"
	return &console{con: con, e: New(con, Options{}), up: up, reg: reg}
}

func (c *console) do(t *testing.T, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec
}

func (c *console) login(t *testing.T) string {
	t.Helper()
	rec := c.do(t, http.MethodPost, "/v1/auth/login", `{"username":"admin","password":"secret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie && ck.Value != "" {
			return ck.Value
		}
	}
	t.Fatal("login did not set the session cookie")
	return ""
}

type page struct {
	Items    []map[string]any `json:"items"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
	PageSize int              `json:"page_size"`
	State    string           `json:"state"`
	Message  string           `json:"message"`
	Error    string           `json:"error"`
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) page {
	t.Helper()
	var p page
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return p
}

func TestPublicRoutes(t *testing.T) {
	c := newConsole(t, 0)
	if rec := c.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
	if rec := c.do(t, http.MethodGet, "/v1/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	rec := c.do(t, http.MethodGet, "/v1/config", "", "")
	if !strings.Contains(rec.Body.String(), `"mapApiKey":"map-key"`) {
		t.Fatalf("config: %s", rec.Body.String())
	}
}

func TestLoginAndGate(t *testing.T) {
	c := newConsole(t, 0)

	rec := c.do(t, http.MethodGet, "/v1/companies", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ungated list: %d", rec.Code)
	}

	rec = c.do(t, http.MethodPost, "/v1/auth/login", `{"username":"admin","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("bad password: %d %s", rec.Code, rec.Body.String())
	}
	rec = c.do(t, http.MethodPost, "/v1/auth/login", `{"username":"","password":""}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank login: %d", rec.Code)
	}

	sid := c.login(t)
	rec = c.do(t, http.MethodGet, "/v1/me", "", sid)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"admin"`) {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	if rec = c.do(t, http.MethodPost, "/v1/auth/logout", "", sid); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec = c.do(t, http.MethodGet, "/v1/me", "", sid); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", rec.Code)
	}
}

func TestListPagination(t *testing.T) {
	c := newConsole(t, 12)
	sid := c.login(t)

	p := decodePage(t, c.do(t, http.MethodGet, "/v1/companies?page=2", "", sid))
	if p.Page != 2 || p.Pages != 2 || p.Total != 12 || len(p.Items) != 2 || p.State != "ready" {
		t.Fatalf("page = %+v", p)
	}

	p = decodePage(t, c.do(t, http.MethodGet, "/v1/companies?page=9", "", sid))
	if p.Page != 2 {
		t.Fatalf("page not clamped: %d", p.Page)
	}
}

func TestEmptyList(t *testing.T) {
	c := newConsole(t, 0)
	sid := c.login(t)
	p := decodePage(t, c.do(t, http.MethodGet, "/v1/companies", "", sid))
	if p.State != "empty" || p.Message != "No records found" || p.Items == nil || len(p.Items) != 0 {
		t.Fatalf("page = %+v", p)
	}
}

func TestDeleteSoleItemStepsBack(t *testing.T) {
	c := newConsole(t, 11)
	sid := c.login(t)

	rec := c.do(t, http.MethodDelete, "/v1/companies/11?page=2", "", sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	if p.Page != 1 || p.Total != 10 || len(p.Items) != 10 {
		t.Fatalf("page = %+v", p)
	}
}

func TestDeleteNotFoundKeepsList(t *testing.T) {
	c := newConsole(t, 3)
	sid := c.login(t)

	rec := c.do(t, http.MethodDelete, "/v1/companies/5", "", sid)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	p := decodePage(t, rec)
	if p.Error != "Company not found" || p.Total != 3 {
		t.Fatalf("page = %+v", p)
	}
}

func TestCreateValidatesBeforeCallingUpstream(t *testing.T) {
	c := newConsole(t, 0)
	sid := c.login(t)

	rec := c.do(t, http.MethodPost, "/v1/companies", `{"email":"a@b.c"}`, sid)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "name is required") {
		t.Fatalf("invalid create: %d %s", rec.Code, rec.Body.String())
	}
	if c.up.creates != 0 {
		t.Fatal("invalid record reached the upstream")
	}

	rec = c.do(t, http.MethodPost, "/v1/companies", `{"name":"Acme","extra":"kept"}`, sid)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, rec)
	if p.Total != 1 || p.Items[0]["name"] != "Acme" {
		t.Fatalf("page = %+v", p)
	}
	if c.up.companies[0]["extra"] != "kept" {
		t.Fatalf("unmodelled field dropped: %v", c.up.companies[0])
	}
}

func TestUpstreamUnauthorizedEndsSession(t *testing.T) {
	c := newConsole(t, 2)
	sid := c.login(t)

	c.up.mu.Lock()
	c.up.expired = true
	c.up.mu.Unlock()

	rec := c.do(t, http.MethodGet, "/v1/companies", "", sid)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"login"`) {
		t.Fatalf("expired: %d %s", rec.Code, rec.Body.String())
	}

	c.up.mu.Lock()
	c.up.expired = false
	c.up.mu.Unlock()
	if rec = c.do(t, http.MethodGet, "/v1/companies", "", sid); rec.Code != http.StatusUnauthorized {
		t.Fatalf("session survived an upstream 401: %d", rec.Code)
	}
}

func TestItemsPerPageComesFromSettings(t *testing.T) {
	c := newConsole(t, 12)
	sid := c.login(t)

	rec := c.do(t, http.MethodPatch, "/v1/settings", `{"path":"itemsPerPage","value":5}`, sid)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"dirty":true`) {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, c.do(t, http.MethodGet, "/v1/companies?page=3", "", sid))
	if p.PageSize != 5 || p.Pages != 3 || len(p.Items) != 2 {
		t.Fatalf("page = %+v", p)
	}

	if rec = c.do(t, http.MethodPatch, "/v1/settings", `{"path":"nope","value":1}`, sid); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown key: %d", rec.Code)
	}
	if rec = c.do(t, http.MethodPost, "/v1/settings/save", "", sid); !strings.Contains(rec.Body.String(), `"dirty":false`) {
		t.Fatalf("save: %s", rec.Body.String())
	}
	if rec = c.do(t, http.MethodPost, "/v1/settings/reset", "", sid); !strings.Contains(rec.Body.String(), `"itemsPerPage":10`) {
		t.Fatalf("reset: %s", rec.Body.String())
	}
}

func TestCategoryTree(t *testing.T) {
	c := newConsole(t, 0)
	sid := c.login(t)

	rec := c.do(t, http.MethodGet, "/v1/categories/tree", "", sid)
	var body struct {
		Items []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || len(body.Items[0].Children) != 1 || body.Items[0].Children[0].Name != "Pizza" {
		t.Fatalf("tree = %s", rec.Body.String())
	}
}

type auditLog struct {
	mu     sync.Mutex
	events []q.AuditEvent
}

func (a *auditLog) Publish(_ context.Context, ev q.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return nil
}

func TestUploadStopsAtFirstFailure(t *testing.T) {
	c := newConsole(t, 1)
	c.up.failAt = 2
	audit := &auditLog{}
	c.con.Audit = &service.Recorder{Pub: audit}
	sid := c.login(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		part, _ := w.CreateFormFile("images", name)
		_, _ = part.Write([]byte("png"))
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/companies/1/images", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Error  string `json:"error"`
		Result struct {
			Orphaned []map[string]any `json:"orphaned"`
			Skipped  []string         `json:"skipped"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Storage down" || len(body.Result.Orphaned) != 1 || len(body.Result.Skipped) != 1 {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if c.up.uploads != 2 {
		t.Fatalf("uploads attempted = %d", c.up.uploads)
	}
	var uploads []string
	for _, ev := range audit.events {
		if ev.Action == q.ActionUpload {
			uploads = append(uploads, ev.EntityID)
		}
	}
	if len(uploads) != 1 || uploads[0] != "img1" {
		t.Fatalf("orphaned image not audited: %v", uploads)
	}
}

func TestCategoryTreeWithParentCycle(t *testing.T) {
	c := newConsole(t, 0)
	sid := c.login(t)

	rec := c.do(t, http.MethodGet, "/v1/resource-categories/tree", "", sid)
	var body struct {
		Items []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	nodes := 0
	for _, it := range body.Items {
		nodes += 1 + len(it.Children)
	}
	if body.Total != 3 || nodes != 3 {
		t.Fatalf("total=%d nodes=%d body=%s", body.Total, nodes, rec.Body.String())
	}
}

func TestDeleteWorksWhileListingFails(t *testing.T) {
	c := newConsole(t, 3)
	sid := c.login(t)
	c.up.mu.Lock()
	c.up.listDown = true
	c.up.mu.Unlock()

	rec := c.do(t, http.MethodDelete, "/v1/companies/2", "", sid)
	if len(c.up.deleted) != 1 || c.up.deleted[0] != "2" {
		t.Fatalf("delete not sent upstream: %v", c.up.deleted)
	}
	p := decodePage(t, rec)
	if rec.Code != http.StatusServiceUnavailable || p.State != "error" || p.Error != "Listing unavailable" {
		t.Fatalf("status=%d page=%+v", rec.Code, p)
	}
}
