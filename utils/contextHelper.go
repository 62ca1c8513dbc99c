package utils

import (
	"context"

	"github.com/agencyhub/marketing_backend/appctx"
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.Value[string](ctx, appctx.KeyToken)
}

func GetAgencyIdFromContext(ctx context.Context) (int, bool) {
	return appctx.Value[int](ctx, appctx.KeyAgencyId)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.Value[string](ctx, appctx.KeyUsername)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.Value[string](ctx, appctx.KeyCorrelationId)
}

func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	return appctx.Value[bool](ctx, appctx.KeyIsAdmin)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.With(ctx, appctx.KeyToken, token)
}

func SetAgencyIdInContext(ctx context.Context, agencyId int) context.Context {
	return appctx.With(ctx, appctx.KeyAgencyId, agencyId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.With(ctx, appctx.KeyUsername, username)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.With(ctx, appctx.KeyCorrelationId, correlationId)
}

func SetIsAdminInContext(ctx context.Context, isAdmin bool) context.Context {
	return appctx.With(ctx, appctx.KeyIsAdmin, isAdmin)
}

func SetSkipTenantScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.With(ctx, appctx.KeySkipTenantScope, skip)
}

// SystemContext is used by cmd tools and pubsub workers acting on behalf of an agency.
func SystemContext(ctx context.Context, agencyId int) context.Context {
	ctx = SetUsernameInContext(ctx, "system")
	ctx = SetSkipTenantScopeInContext(ctx, true)
	if agencyId > 0 {
		ctx = SetAgencyIdInContext(ctx, agencyId)
	}
	return ctx
}
