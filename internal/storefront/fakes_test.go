package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/logging"
	"github.com/ars-4/grocer-middleware/internal/middleware"
	"github.com/ars-4/grocer-middleware/internal/odoo"
	"github.com/ars-4/grocer-middleware/internal/otp"
)

// rpcCall records one ExecuteKw invocation.
type rpcCall struct {
	model   string
	method  string
	args    []any
	options map[string]any
}

// fakeRPC is an in-memory stand-in for the Odoo client. Responses are keyed
// by "model.method"; unkeyed calls answer an empty list.
type fakeRPC struct {
	mu        sync.Mutex
	calls     []rpcCall
	responses map[string]string
	errs      map[string]error

	extID    int64
	extErr   error
	extCalls []string
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeRPC) respond(model, method, body string) {
	f.responses[model+"."+method] = body
}

func (f *fakeRPC) fail(model, method string, err error) {
	f.errs[model+"."+method] = err
}

func (f *fakeRPC) ExecuteKw(_ context.Context, _ odoo.Session, model, method string, args []any, options map[string]any) (gjson.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, rpcCall{model: model, method: method, args: args, options: options})

	key := model + "." + method
	if err := f.errs[key]; err != nil {
		return gjson.Result{}, err
	}
	if body, ok := f.responses[key]; ok {
		return gjson.Parse(body), nil
	}
	return gjson.Parse("[]"), nil
}

func (f *fakeRPC) ResolveExternalID(_ context.Context, _ odoo.Session, module, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.extCalls = append(f.extCalls, module+"."+name)
	if f.extErr != nil {
		return 0, f.extErr
	}
	return f.extID, nil
}

func (f *fakeRPC) BaseURL(tenant string) string {
	return "https://" + tenant + ".odoo.example"
}

// callsTo returns the recorded calls for one model.method key.
func (f *fakeRPC) callsTo(model, method string) []rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []rpcCall
	for _, c := range f.calls {
		if c.model == model && c.method == method {
			out = append(out, c)
		}
	}
	return out
}

// argsJSON renders a recorded call's args as parsed JSON for inspection.
func (c rpcCall) argsJSON() gjson.Result {
	encoded, err := json.Marshal(c.args)
	if err != nil {
		panic(err)
	}
	return gjson.ParseBytes(encoded)
}

// stubOTP returns canned results and records what it was asked.
type stubOTP struct {
	mu           sync.Mutex
	sendResult   bool
	sendErr      error
	verifyResult bool
	verifyErr    error
	sends        []string
	verifies     [][2]string
}

func (o *stubOTP) Send(_ context.Context, email string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sends = append(o.sends, email)
	return o.sendResult, o.sendErr
}

func (o *stubOTP) Verify(_ context.Context, email, code string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verifies = append(o.verifies, [2]string{email, code})
	return o.verifyResult, o.verifyErr
}

// otpBox models the collaborator's documented contract: issuing again while a
// code is pending must not invalidate the earlier code.
type otpBox struct {
	mu     sync.Mutex
	next   int
	codes  map[string]string
	issued []string
}

func newOTPBox() *otpBox {
	return &otpBox{codes: make(map[string]string)}
}

func (o *otpBox) Send(_ context.Context, email string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, pending := o.codes[email]; !pending {
		o.next++
		o.codes[email] = fmt.Sprintf("%06d", o.next)
	}
	o.issued = append(o.issued, o.codes[email])
	return true, nil
}

func (o *otpBox) Verify(_ context.Context, email, code string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[email] == code, nil
}

// newTestRouter builds the service over the fakes with a session already
// resolved, the way the credential middleware would leave it.
func newTestRouter(rpc *fakeRPC, otpService otp.Service) http.Handler {
	svc := New(rpc, otpService, logging.NewDefault("storefront-test"), Config{
		SignupStateID:   1,
		SignupCountryID: 586,
	})

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := odoo.Session{Tenant: "acme", UID: 2, Secret: "pw"}
			next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), sess)))
		})
	})
	svc.RegisterRoutes(router)
	return router
}
