// Package storefront exposes the REST endpoints of the gateway: catalog,
// orders and customer flows, each an orchestration of one or more Odoo RPC
// calls plus translation into stable response contracts.
package storefront

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/httputil"
	"github.com/ars-4/grocer-middleware/internal/logging"
	"github.com/ars-4/grocer-middleware/internal/middleware"
	"github.com/ars-4/grocer-middleware/internal/odoo"
	"github.com/ars-4/grocer-middleware/internal/otp"
)

// RPC is the slice of the Odoo client the endpoints consume.
type RPC interface {
	ExecuteKw(ctx context.Context, sess odoo.Session, model, method string, args []any, options map[string]any) (gjson.Result, error)
	ResolveExternalID(ctx context.Context, sess odoo.Session, module, name string) (int64, error)
	BaseURL(tenant string) string
}

// Config holds endpoint behavior settings.
type Config struct {
	// Defaults stamped onto newly created customer records.
	SignupStateID   int64
	SignupCountryID int64
}

// Service bundles the storefront endpoints.
type Service struct {
	rpc RPC
	otp otp.Service
	log *logging.Logger
	cfg Config
}

// New creates the storefront service.
func New(rpc RPC, otpService otp.Service, logger *logging.Logger, cfg Config) *Service {
	return &Service{
		rpc: rpc,
		otp: otpService,
		log: logger,
		cfg: cfg,
	}
}

// RegisterRoutes registers the storefront endpoints. The router is expected
// to already carry the credential middleware that resolves the per-request
// Odoo session.
func (s *Service) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	r.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/product/{id}", s.handleProductDetail).Methods(http.MethodGet)
	r.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/create-order", s.handleCreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/{id}", s.handleOrderDetail).Methods(http.MethodGet)
	r.HandleFunc("/customer/lookup", s.handleCustomerLookup).Methods(http.MethodPost)
	r.HandleFunc("/customer/login", s.handleCustomerLogin).Methods(http.MethodPost)
	r.HandleFunc("/customer/auth", s.handleCustomerAuth).Methods(http.MethodPost)
	r.HandleFunc("/customer/signup", s.handleCustomerSignup).Methods(http.MethodPost)
}

// session pulls the resolved Odoo session from the request context. The
// credential middleware guarantees it on registered routes.
func (s *Service) session(w http.ResponseWriter, r *http.Request) (odoo.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "request has no resolved session")
	}
	return sess, ok
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Your Credentials Worked"})
}
