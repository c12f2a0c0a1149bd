// internal/domain/cart/owner.go
package cart

import "gorm.io/gorm"

type ownerKind int

const (
	ownerAnonymous ownerKind = iota
	ownerUser
	ownerGuest
)

// Owner identifies who a cart belongs to: an authenticated user, a guest
// session, or nobody. The variant makes the user/session keys mutually
// exclusive instead of relying on two nullable columns by convention.
type Owner struct {
	kind      ownerKind
	userID    uint
	sessionID string
}

// UserOwner returns the owner for an authenticated user
func UserOwner(userID uint) Owner {
	return Owner{kind: ownerUser, userID: userID}
}

// GuestOwner returns the owner for an anonymous session. An empty session ID
// yields the anonymous owner.
func GuestOwner(sessionID string) Owner {
	if sessionID == "" {
		return Owner{}
	}
	return Owner{kind: ownerGuest, sessionID: sessionID}
}

// AnonymousOwner returns the owner for a caller with no identity at all
func AnonymousOwner() Owner {
	return Owner{}
}

func (o Owner) IsUser() bool      { return o.kind == ownerUser }
func (o Owner) IsGuest() bool     { return o.kind == ownerGuest }
func (o Owner) IsAnonymous() bool { return o.kind == ownerAnonymous }

// UserID returns the user ID when the owner is an authenticated user
func (o Owner) UserID() (uint, bool) {
	return o.userID, o.kind == ownerUser
}

// SessionID returns the session ID when the owner is a guest
func (o Owner) SessionID() (string, bool) {
	return o.sessionID, o.kind == ownerGuest
}

// scope narrows a cart line query to the owner's rows. An anonymous owner
// matches nothing.
func (o Owner) scope(db *gorm.DB) *gorm.DB {
	switch o.kind {
	case ownerUser:
		return db.Where("cart_lines.user_id = ?", o.userID)
	case ownerGuest:
		return db.Where("cart_lines.session_id = ?", o.sessionID)
	default:
		return db.Where("1 = 0")
	}
}

// lineKeys returns the column values a new cart line for this owner carries
func (o Owner) lineKeys() (userID *uint, sessionID *string) {
	switch o.kind {
	case ownerUser:
		id := o.userID
		return &id, nil
	case ownerGuest:
		sid := o.sessionID
		return nil, &sid
	default:
		return nil, nil
	}
}
