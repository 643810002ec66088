package middleware

import "context"

// DefaultAdminEmail is the admin identity used when NewRoleCheck is given
// none.
const DefaultAdminEmail = "admin@example.com"

// RoleCheck accepts admin emails on the spot and skips every link after
// it. Anyone else is delegated to the rest of the chain.
type RoleCheck struct {
	Link
	admins map[string]struct{}
}

// NewRoleCheck returns a RoleCheck for the given admin emails, or for
// DefaultAdminEmail when none are given.
func NewRoleCheck(admins ...string) *RoleCheck {
	if len(admins) == 0 {
		admins = []string{DefaultAdminEmail}
	}
	m := &RoleCheck{admins: make(map[string]struct{}, len(admins))}
	for _, a := range admins {
		m.admins[a] = struct{}{}
	}
	return m
}

const roleCheckName = "RoleCheckMiddleware"

// IsAdmin reports whether email is one of the admin identities.
func (m *RoleCheck) IsAdmin(email string) bool {
	_, ok := m.admins[email]
	return ok
}

// Check implements Middleware.
func (m *RoleCheck) Check(ctx context.Context, c Credentials) (bool, error) {
	if m.IsAdmin(c.Email) {
		ReportDecision(ctx, roleCheckName, "Hello, admin!")
		decisionsTotal.WithLabelValues(roleCheckName, decisionAccept).Inc()
		return true, nil
	}

	ReportDecision(ctx, roleCheckName, "Hello, user!")
	decisionsTotal.WithLabelValues(roleCheckName, decisionForward).Inc()
	return m.Forward(ctx, c)
}
