package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ars-4/grocer-middleware/internal/httputil"
	"github.com/ars-4/grocer-middleware/internal/logging"
	"github.com/ars-4/grocer-middleware/internal/odoo"
)

// Authenticator resolves Odoo credentials into a session uid.
type Authenticator interface {
	Login(ctx context.Context, tenant, user, secret string) (int64, error)
}

type sessionContextKey struct{}

// SessionFromContext returns the request's resolved Odoo session.
func SessionFromContext(ctx context.Context) (odoo.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(odoo.Session)
	return sess, ok
}

// WithSession attaches a session to the context. Exposed for handler tests.
func WithSession(ctx context.Context, sess odoo.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// OdooAuth derives a per-request Odoo session from the ODOO_DB, ODOO_USER and
// ODOO_PASS query parameters. All three are required and validated before any
// remote call; the resolved session lives only in this request's context.
func OdooAuth(auth Authenticator, logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			tenant := query.Get("ODOO_DB")
			user := query.Get("ODOO_USER")
			secret := query.Get("ODOO_PASS")

			if tenant == "" || user == "" || secret == "" {
				httputil.WriteError(w, http.StatusBadRequest, "ODOO_DB, ODOO_USER, and ODOO_PASS are required")
				return
			}

			uid, err := auth.Login(r.Context(), tenant, user, secret)
			if err != nil {
				logger.WithTrace(r.Context()).WithField("tenant", tenant).Errorf("odoo login failed: %v", err)
				httputil.WriteErr(w, httputil.Internal("Odoo login failed", err))
				return
			}

			sess := odoo.Session{Tenant: tenant, UID: uid, Secret: secret}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
