package storefront

import (
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/httputil"
	"github.com/ars-4/grocer-middleware/internal/odoo"
)

func (s *Service) handleCustomerLookup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteErr(w, httputil.Validation("Name or phone is required"))
		return
	}
	if payload.Name == "" && payload.Phone == "" {
		httputil.WriteErr(w, httputil.Validation("Name or phone is required"))
		return
	}

	// Name matches partially, phone exactly.
	domain := []any{}
	if payload.Name != "" {
		domain = append(domain, []any{"name", "ilike", payload.Name})
	}
	if payload.Phone != "" {
		domain = append(domain, []any{"phone", "=", payload.Phone})
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "search_read",
		[]any{domain},
		map[string]any{"fields": []string{"id", "name", "email", "phone"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("customer lookup: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to look up customer in Odoo.", err))
		return
	}

	partners := result.Array()
	if len(partners) == 0 {
		httputil.WriteErr(w, httputil.NotFound("Customer not found"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, customerFromRecord(partners[0]))
}

func (s *Service) handleCustomerLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := httputil.DecodeJSON(r, &payload); err != nil || payload.Email == "" {
		httputil.WriteErr(w, httputil.Validation("Email is required"))
		return
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "search_read",
		[]any{[]any{[]any{"email", "=", payload.Email}}},
		map[string]any{"fields": []string{"id", "name", "email", "phone"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("customer login: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to look up customer in Odoo.", err))
		return
	}

	partners := result.Array()
	if len(partners) == 0 {
		httputil.WriteErr(w, httputil.NotFound("Customer not found"))
		return
	}

	sent, err := s.otp.Send(r.Context(), payload.Email)
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("send otp: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to send passcode.", err))
		return
	}
	if !sent {
		s.log.WithTrace(r.Context()).Warnf("otp service declined to send for %s", payload.Email)
	}

	httputil.WriteJSON(w, http.StatusOK, customerFromRecord(partners[0]))
}

func (s *Service) handleCustomerAuth(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := httputil.DecodeJSON(r, &payload); err != nil || payload.Email == "" || payload.OTP == "" {
		httputil.WriteErr(w, httputil.Validation("Email and OTP are required"))
		return
	}

	valid, err := s.otp.Verify(r.Context(), payload.Email, payload.OTP)
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("verify otp: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to verify passcode.", err))
		return
	}
	if !valid {
		httputil.WriteErr(w, httputil.InvalidCredential("Invalid OTP, Authentication Error"))
		return
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "search_read",
		[]any{[]any{[]any{"email", "=", payload.Email}}},
		map[string]any{"fields": []string{"id", "name", "email", "phone", "street", "city"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("customer auth profile: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to look up customer in Odoo.", err))
		return
	}

	partners := result.Array()
	if len(partners) == 0 {
		httputil.WriteErr(w, httputil.NotFound("Customer not found in Odoo."))
		return
	}
	rec := partners[0]

	httputil.WriteJSON(w, http.StatusOK, CustomerProfile{
		Customer: customerFromRecord(rec),
		Street:   odoo.Str(rec, "street"),
		City:     odoo.Str(rec, "city"),
	})
}

func (s *Service) handleCustomerSignup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Street   string `json:"street"`
		Street2  string `json:"street2"`
		City     string `json:"city"`
		Zip      string `json:"zip"`
		Password string `json:"password"`
	}
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteErr(w, httputil.Validation("Name, phone, email and street are required"))
		return
	}
	if payload.Name == "" || payload.Phone == "" || payload.Email == "" || payload.Street == "" {
		httputil.WriteErr(w, httputil.Validation("Name, phone, email and street are required"))
		return
	}

	// A contact matching either the phone or the email already exists? Then
	// no create call may be issued at all.
	domain := []any{"|", []any{"phone", "=", payload.Phone}, []any{"email", "=", payload.Email}}
	existing, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "search_read",
		[]any{domain},
		map[string]any{"fields": []string{"id", "name", "phone", "email"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("signup duplicate check: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to sign up customer in Odoo.", err))
		return
	}
	if len(existing.Array()) > 0 {
		httputil.WriteErr(w, httputil.Conflict("Customer with this phone or email already exists"))
		return
	}

	// Unset optional fields are written as empty values, never omitted.
	createResult, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "create",
		[]any{map[string]any{
			"name":       payload.Name,
			"phone":      payload.Phone,
			"email":      payload.Email,
			"street":     payload.Street,
			"street2":    payload.Street2,
			"city":       payload.City,
			"zip":        payload.Zip,
			"state_id":   s.cfg.SignupStateID,
			"country_id": s.cfg.SignupCountryID,
		}}, nil)
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("signup create: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to sign up customer in Odoo.", err))
		return
	}
	partnerID := createResult.Int()

	// Portal access: attach an application user with customer privileges to
	// the contact. Runs only when a password was supplied. The contact is
	// already created at this point, so a failure here is a partial one and
	// nothing is rolled back.
	if payload.Password != "" {
		if err := s.grantPortalAccess(r, sess, partnerID, payload.Email, payload.Password); err != nil {
			s.log.WithTrace(r.Context()).Errorf("portal provisioning for partner %d: %v", partnerID, err)
			httputil.WriteErr(w, httputil.PartialFailure("Customer created, but failed to grant website login access. Please try again."))
			return
		}
	}

	readResult, err := s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "read",
		[]any{[]int64{partnerID}},
		map[string]any{"fields": []string{
			"id", "name", "phone", "email", "street", "street2",
			"city", "state_id", "zip", "country_id",
		}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("signup read back: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to sign up customer in Odoo.", err))
		return
	}
	records := readResult.Array()
	if len(records) == 0 {
		httputil.WriteErr(w, httputil.Internal("Failed to sign up customer in Odoo.", nil))
		return
	}
	rec := records[0]

	httputil.WriteJSON(w, http.StatusCreated, CustomerRecord{
		ID:      odoo.Int(rec, "id"),
		Name:    odoo.Str(rec, "name"),
		Phone:   odoo.Str(rec, "phone"),
		Email:   odoo.Str(rec, "email"),
		Street:  odoo.Str(rec, "street"),
		Street2: odoo.Str(rec, "street2"),
		City:    odoo.Str(rec, "city"),
		State:   odoo.Many2One(rec, "state_id"),
		Zip:     odoo.Str(rec, "zip"),
		Country: odoo.Many2One(rec, "country_id"),
	})
}

// grantPortalAccess resolves the portal group by its external id and writes a
// new application user onto the contact, suppressing the remote's default
// password-reset email.
func (s *Service) grantPortalAccess(r *http.Request, sess odoo.Session, partnerID int64, email, password string) error {
	portalGroupID, err := s.rpc.ResolveExternalID(r.Context(), sess, "base", "group_portal")
	if err != nil {
		return err
	}

	_, err = s.rpc.ExecuteKw(r.Context(), sess, "res.partner", "write",
		[]any{
			[]int64{partnerID},
			map[string]any{
				"user_ids": []odoo.Command{odoo.CreateRecord(map[string]any{
					"login":     email,
					"password":  password,
					"group_ids": []odoo.Command{odoo.ReplaceAll([]int64{portalGroupID})},
				})},
			},
		},
		map[string]any{"context": map[string]any{"no_reset_password": true}})
	return err
}

func customerFromRecord(rec gjson.Result) Customer {
	return Customer{
		ID:    odoo.Int(rec, "id"),
		Name:  odoo.Str(rec, "name"),
		Email: odoo.Str(rec, "email"),
		Phone: odoo.Str(rec, "phone"),
	}
}
