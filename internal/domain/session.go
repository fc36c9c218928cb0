package domain

type Identity struct {
	Email    string
	FullName string
}

// Session is what a request knows about its caller. Identity is nil for guests.
type Session struct {
	GuestID  string
	Identity *Identity
}

func GuestSession(guestID string) Session {
	return Session{GuestID: guestID}
}

func AuthenticatedSession(identity Identity, guestID string) Session {
	return Session{GuestID: guestID, Identity: &identity}
}

func (s Session) Authenticated() bool {
	return s.Identity != nil && s.Identity.Email != ""
}

// OwnerID keys the active cart store: the user email when signed in, the guest ID otherwise.
func (s Session) OwnerID() string {
	if s.Authenticated() {
		return s.Identity.Email
	}
	return s.GuestID
}
