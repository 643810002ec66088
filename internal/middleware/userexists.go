package middleware

import "context"

// Directory answers credential lookups for UserExists.
type Directory interface {
	HasEmail(email string) bool
	ValidPassword(email, password string) bool
}

// UserExists rejects unknown emails and wrong passwords.
type UserExists struct {
	Link
	dir Directory
}

// NewUserExists returns a UserExists backed by dir.
func NewUserExists(dir Directory) *UserExists {
	return &UserExists{dir: dir}
}

const userExistsName = "UserExistsMiddleware"

// Check implements Middleware.
func (m *UserExists) Check(ctx context.Context, c Credentials) (bool, error) {
	if !m.dir.HasEmail(c.Email) {
		ReportDecision(ctx, userExistsName, "This email is not registered!")
		decisionsTotal.WithLabelValues(userExistsName, decisionReject).Inc()
		return false, nil
	}

	if !m.dir.ValidPassword(c.Email, c.Password) {
		ReportDecision(ctx, userExistsName, "Wrong password!")
		decisionsTotal.WithLabelValues(userExistsName, decisionReject).Inc()
		return false, nil
	}

	decisionsTotal.WithLabelValues(userExistsName, decisionForward).Inc()
	return m.Forward(ctx, c)
}
