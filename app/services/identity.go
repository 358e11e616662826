// Package services provides external service integrations and technical concerns like transports and token validation
package services

// Identity is the resolved tenant identity of a caller. It is either the
// admin superuser, which may act on resources owned by any tenant, or one
// specific client.
type Identity struct {
	Admin    bool
	ClientID uint
}

// AdminIdentity returns the admin superuser identity.
func AdminIdentity() Identity {
	return Identity{Admin: true}
}

// ClientIdentity returns the identity of one tenant.
func ClientIdentity(clientID uint) Identity {
	return Identity{ClientID: clientID}
}

// MayAccess reports whether the identity may act on a resource owned by
// the given tenant. The admin identity is a wildcard; clients are compared
// for strict equality.
func (i Identity) MayAccess(ownerID uint) bool {
	return i.Admin || i.ClientID == ownerID
}

// StorageClientID is the tenant id persisted on rows this identity
// creates. Admin-owned rows store zero.
func (i Identity) StorageClientID() uint {
	if i.Admin {
		return 0
	}
	return i.ClientID
}
