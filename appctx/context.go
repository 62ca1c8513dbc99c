// Package appctx holds the request-scoped values shared by config and utils.
// It imports nothing from this module so both sides can depend on it.
package appctx

import "context"

type key string

func (k key) String() string { return "appctx." + string(k) }

const (
	KeyToken         = key("token")
	KeyAgencyId      = key("agency_id")
	KeyUsername      = key("username")
	KeyCorrelationId = key("correlation_id")
	KeyIsAdmin       = key("is_admin")
	// KeySkipTenantScope is set by cmd tools and pubsub workers only.
	KeySkipTenantScope = key("skip_tenant_scope")
)

// Value returns the value stored under k when it has type T.
func Value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func With(ctx context.Context, k key, value any) context.Context {
	return context.WithValue(ctx, k, value)
}

// AgencyId reports the tenant of the request; ids <= 0 count as absent.
func AgencyId(ctx context.Context) (int, bool) {
	id, ok := Value[int](ctx, KeyAgencyId)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// Unscoped is true for admins and internal jobs, whose queries see every agency.
func Unscoped(ctx context.Context) bool {
	if skip, _ := Value[bool](ctx, KeySkipTenantScope); skip {
		return true
	}
	admin, _ := Value[bool](ctx, KeyIsAdmin)
	return admin
}
