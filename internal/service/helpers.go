package service

import (
	"context"

	"fundcrm/internal/domain"
)

func requireUser(ctx context.Context) (domain.ContextUser, error) {
	u, ok := domain.UserFromContext(ctx)
	if !ok {
		return domain.ContextUser{}, domain.ErrUnauthorized("authentication required")
	}
	return u, nil
}

func requireRole(ctx context.Context, roles ...string) (domain.ContextUser, error) {
	u, err := requireUser(ctx)
	if err != nil {
		return domain.ContextUser{}, err
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return domain.ContextUser{}, domain.ErrAccessDenied("role %q may not perform this action", u.Role)
}

// applyStr stages a string-column change: nil input is "leave as is",
// anything else is written and diffed into the audit details.
func applyStr(fields, details map[string]any, col string, old *string, val *string) {
	if val == nil {
		return
	}
	if old != nil && *old == *val {
		return
	}
	fields[col] = *val
	fieldChange(details, col, deref(old), *val)
}

// applyStrVal is applyStr for NOT NULL columns.
func applyStrVal(fields, details map[string]any, col string, old string, val *string) {
	if val == nil || *val == old {
		return
	}
	fields[col] = *val
	fieldChange(details, col, old, *val)
}

func applyInt(fields, details map[string]any, col string, old *int64, val *int64) {
	if val == nil {
		return
	}
	if old != nil && *old == *val {
		return
	}
	fields[col] = *val
	fieldChange(details, col, derefInt(old), *val)
}

func applyBool(fields, details map[string]any, col string, old bool, val *bool) {
	if val == nil || *val == old {
		return
	}
	fields[col] = boolToInt(*val)
	fieldChange(details, col, old, *val)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
