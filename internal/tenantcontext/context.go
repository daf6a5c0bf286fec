package tenantcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ctxKey int

const (
	tenantIDKey ctxKey = iota
	superadminKey
)

// WithTenantID attaches the owning teacher id to the context. Every catalog,
// generator and ledger call resolves its scope from this value.
func WithTenantID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}

func TenantIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(tenantIDKey).(snowflake.ID)
	return id, ok
}

// WithSuperadmin marks the context as a privileged caller that may query
// across tenants.
func WithSuperadmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, superadminKey, true)
}

func IsSuperadmin(ctx context.Context) bool {
	v, _ := ctx.Value(superadminKey).(bool)
	return v
}
