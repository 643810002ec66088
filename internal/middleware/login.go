package middleware

// LoginChain is the chain used by both the server and the console login:
// Throttling, then UserExists, then RoleCheck.
type LoginChain struct {
	Head     Middleware
	Throttle *Throttling
	Roles    *RoleCheck
}

// NewLoginChain builds a LoginChain over dir. A nil clock uses the system
// clock; no admins means DefaultAdminEmail.
func NewLoginChain(dir Directory, requestsPerMinute int, clock Clock, admins ...string) (*LoginChain, error) {
	throttle := NewThrottling(requestsPerMinute, clock)
	roles := NewRoleCheck(admins...)
	head, err := Chain(throttle, NewUserExists(dir), roles)
	if err != nil {
		return nil, err
	}
	return &LoginChain{Head: head, Throttle: throttle, Roles: roles}, nil
}
