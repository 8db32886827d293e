package domain

// EnforceRequest is the permission check passed from the HTTP middleware to
// the rbac service. It lives here so middleware and rbac never import each
// other.
type EnforceRequest struct {
	UserID   string
	Resource string
	Action   string
}
