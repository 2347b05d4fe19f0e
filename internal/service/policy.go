package service

// AccessPolicy decides which todos a caller may see. The authenticated
// variant scopes every query to the caller; the open variant shares one
// list between everyone.
type AccessPolicy struct {
	ownerScoped bool
}

var (
	OwnerScoped = AccessPolicy{ownerScoped: true}
	Open        = AccessPolicy{}
)

func (p AccessPolicy) ScopesToOwner() bool {
	return p.ownerScoped
}

// owner returns the owner constraint for a caller. An owner-scoped policy
// refuses to run without an identity.
func (p AccessPolicy) owner(userID string) (string, error) {
	if !p.ownerScoped {
		return "", nil
	}
	if userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}
