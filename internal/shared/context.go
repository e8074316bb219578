package shared

import (
	"context"
	"strings"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID      int64
	Subject     string
	Permissions []string
}

// Has reports whether the principal was granted perm. Comparison ignores case.
func (p *Principal) Has(perm string) bool {
	if p == nil {
		return false
	}
	perm = strings.TrimSpace(perm)
	for _, granted := range p.Permissions {
		if strings.EqualFold(granted, perm) {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
