package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ars-4/grocer-middleware/internal/logging"
	"github.com/ars-4/grocer-middleware/internal/odoo"
)

type loginRecord struct {
	tenant string
	user   string
	secret string
}

type fakeAuth struct {
	uid    int64
	err    error
	logins []loginRecord
}

func (f *fakeAuth) Login(_ context.Context, tenant, user, secret string) (int64, error) {
	f.logins = append(f.logins, loginRecord{tenant: tenant, user: user, secret: secret})
	if f.err != nil {
		return 0, f.err
	}
	return f.uid, nil
}

func newAuthRouter(auth *fakeAuth, inner http.HandlerFunc) http.Handler {
	router := mux.NewRouter()
	router.Use(OdooAuth(auth, logging.NewDefault("auth-test")))
	router.HandleFunc("/ping", inner)
	return router
}

func TestOdooAuthInjectsSession(t *testing.T) {
	auth := &fakeAuth{uid: 7}
	var got odoo.Session
	router := newAuthRouter(auth, func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
		"/ping?ODOO_DB=acme&ODOO_USER=admin&ODOO_PASS=secret", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(auth.logins) != 1 || auth.logins[0] != (loginRecord{"acme", "admin", "secret"}) {
		t.Errorf("logins = %+v", auth.logins)
	}
	want := odoo.Session{Tenant: "acme", UID: 7, Secret: "secret"}
	if got != want {
		t.Errorf("session = %+v, want %+v", got, want)
	}
}

func TestOdooAuthMissingCredentials(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{name: "all_missing", query: ""},
		{name: "missing_db", query: "?ODOO_USER=admin&ODOO_PASS=secret"},
		{name: "missing_user", query: "?ODOO_DB=acme&ODOO_PASS=secret"},
		{name: "missing_pass", query: "?ODOO_DB=acme&ODOO_USER=admin"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{uid: 7}
			router := newAuthRouter(auth, func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached without credentials")
			})

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping"+tc.query, nil))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error"] != "ODOO_DB, ODOO_USER, and ODOO_PASS are required" {
				t.Errorf("error = %q", body["error"])
			}
			if len(auth.logins) != 0 {
				t.Errorf("logins = %+v, want none", auth.logins)
			}
		})
	}
}

func TestOdooAuthLoginFailure(t *testing.T) {
	auth := &fakeAuth{err: errors.New("upstream unreachable")}
	router := newAuthRouter(auth, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached after failed login")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
		"/ping?ODOO_DB=acme&ODOO_USER=admin&ODOO_PASS=wrong", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Odoo login failed" {
		t.Errorf("error = %q, want %q", body["error"], "Odoo login failed")
	}
}
