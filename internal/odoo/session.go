package odoo

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrAuthFailed indicates the remote login call did not produce a usable
// session token.
var ErrAuthFailed = errors.New("odoo login failed")

// Session carries the per-request authentication state for object-method
// calls: tenant database, the numeric uid returned by login, and the secret
// that must accompany every call. A Session lives for exactly one inbound
// request and is never cached.
type Session struct {
	Tenant string
	UID    int64
	Secret string
}

// Login authenticates against the tenant's common service and returns the
// session uid. Odoo reports bad credentials as a false result rather than an
// error; both surface here as ErrAuthFailed.
func (c *Client) Login(ctx context.Context, tenant, user, secret string) (int64, error) {
	result, err := c.Call(ctx, tenant, "common", "login", []any{tenant, user, secret})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	uid := result.Int()
	if uid == 0 {
		return 0, ErrAuthFailed
	}
	return uid, nil
}

// ExecuteKw invokes a method on a named business-object model. The positional
// prefix [tenant, uid, secret, model, method] is the remote protocol's
// contract and must stay in that order; options, when present, ride as the
// trailing argument.
func (c *Client) ExecuteKw(ctx context.Context, sess Session, model, method string, args []any, options map[string]any) (gjson.Result, error) {
	callArgs := []any{sess.Tenant, sess.UID, sess.Secret, model, method}
	callArgs = append(callArgs, args...)
	if options != nil {
		callArgs = append(callArgs, options)
	}
	return c.Call(ctx, sess.Tenant, "object", "execute_kw", callArgs)
}

// ResolveExternalID looks up a record by its stable external identifier
// (module.name) and returns the numeric database id. Used for records whose
// id is not known in advance, such as the portal user group.
func (c *Client) ResolveExternalID(ctx context.Context, sess Session, module, name string) (int64, error) {
	result, err := c.ExecuteKw(ctx, sess, "ir.model.data", "check_object_reference", []any{module, name}, nil)
	if err != nil {
		return 0, err
	}

	// The reference resolves to a [model, id] pair.
	id := result.Get("1").Int()
	if id == 0 {
		return 0, fmt.Errorf("external id %s.%s did not resolve", module, name)
	}
	return id, nil
}
