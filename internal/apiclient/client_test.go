package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iliyamo/directory-admin/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client())
}

func TestLoginDecodesNestedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"username":"admin"`) {
			t.Errorf("login body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"tokens":{"access_token":"a","refresh_token":"r"},"data":{"id":1,"username":"admin"}}}`)
	})

	creds, err := c.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if creds.Token != "a" || creds.RefreshToken != "r" {
		t.Fatalf("tokens = %q/%q", creds.Token, creds.RefreshToken)
	}
	if creds.User.ID != "1" || creds.User.Username != "admin" {
		t.Fatalf("user = %+v", creds.User)
	}
}

func TestLoginAcceptsTopLevelShape(t *testing.T) {
	creds, err := decodeCredentials([]byte(`{"tokens":{"accessToken":"x","refreshToken":"y"},"user":{"id":"u-1","username":"root"}}`))
	if err != nil {
		t.Fatalf("decodeCredentials error = %v", err)
	}
	if creds.Token != "x" || creds.RefreshToken != "y" || creds.User.ID != "u-1" {
		t.Fatalf("creds = %+v", creds)
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	if _, err := decodeCredentials([]byte(`{"data":{"data":{"id":1}}}`)); err == nil {
		t.Fatal("expected error when no token is present")
	}
}

func TestDeleteNotFoundCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/company/5" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Company not found"}`)
	})

	err := c.Companies().Delete(context.Background(), "5")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Company not found" {
		t.Fatalf("error text = %q", err.Error())
	}
	if StatusOf(err) != http.StatusNotFound {
		t.Fatalf("status = %d", StatusOf(err))
	}
}

func TestDeleteNoContentIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Coupons().Delete(context.Background(), "9"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"error":"Forbidden resource"}`, "Forbidden resource"},
		{`{"message":["name should not be empty","email must be an email"]}`, "name should not be empty, email must be an email"},
		{`{"error":{"message":"nested"}}`, "nested"},
		{`<html>oops</html>`, "Failed to create company"},
		{``, "Failed to create company"},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, tc.body)
		})
		_, err := c.Companies().Create(context.Background(), model.Company{Name: "x"})
		if err == nil || err.Error() != tc.want {
			t.Errorf("body %q: error = %v, want %q", tc.body, err, tc.want)
		}
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewWithHTTPClient(url, &http.Client{})
	_, err := c.Companies().List(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if got := Describe(err, "Failed to load companies"); got != "Network error" {
		t.Fatalf("Describe = %q", got)
	}
}

func TestBearerTokenAndListEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		_, _ = io.WriteString(w, `{"data":{"companies":[{"id":2,"name":"B"},{"id":1,"name":"A"}]}}`)
	}).WithToken("tok")

	items, err := c.Companies().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 || items[0].Name != "B" || items[1].Name != "A" {
		t.Fatalf("items = %+v", items)
	}
}

func TestNoTokenNoAuthorizationHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthorized"}`)
	})
	_, err := c.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized(%v) = false", err)
	}
}

func TestUploadCompanyImageMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/3/images" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "front.jpg" || string(data) != "jpegbytes" {
			t.Errorf("file = %s %q", hdr.Filename, data)
		}
		if r.FormValue("index") != "0" || r.FormValue("isMain") != "true" {
			t.Errorf("index/isMain = %s/%s", r.FormValue("index"), r.FormValue("isMain"))
		}
		_, _ = io.WriteString(w, `{"data":{"id":11,"url":"https://cdn/x.jpg","index":0,"isMain":true}}`)
	})

	img, err := c.UploadCompanyImage(context.Background(), "3", ImageFile{
		Name: "front.jpg", Data: strings.NewReader("jpegbytes"), Index: 0, IsMain: true,
	})
	if err != nil {
		t.Fatalf("UploadCompanyImage() error = %v", err)
	}
	if img.ID != "11" || img.URL != "https://cdn/x.jpg" || !img.IsMain {
		t.Fatalf("img = %+v", img)
	}
}

func TestUserStatusUsesPatch(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}).WithToken("tok")

	if err := c.ActivateUser(context.Background(), "3"); err != nil {
		t.Fatalf("ActivateUser: %v", err)
	}
	if err := c.DeactivateUser(context.Background(), "3"); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	want := []string{"PATCH /user/3/activate", "PATCH /user/3/deactivate"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("requests = %v", got)
	}
}
