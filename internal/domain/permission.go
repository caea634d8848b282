package domain

// Decision is the outcome of the modification policy, recording which rule
// granted access.
type Decision int

const (
	Denied Decision = iota
	AllowedAsAdmin
	AllowedNoCreator
	AllowedAsCreator
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d != Denied
}

func (d Decision) String() string {
	switch d {
	case AllowedAsAdmin:
		return "admin"
	case AllowedNoCreator:
		return "no_creator"
	case AllowedAsCreator:
		return "creator"
	default:
		return "denied"
	}
}

// CanModify decides whether actor may update or delete an entity created by
// creator. Rules apply in order: administrators always may, anyone
// authenticated may when no creator is recorded, otherwise only the creator.
// A nil actor is always denied.
func CanModify(actor *Actor, creator OptionalID) Decision {
	if actor == nil {
		return Denied
	}
	if actor.IsAdmin {
		return AllowedAsAdmin
	}
	if !creator.IsSet() {
		return AllowedNoCreator
	}
	if creator.Is(actor.ProfileID) {
		return AllowedAsCreator
	}
	return Denied
}

// CanManageProfile reports whether actor may edit the given profile or its
// friend and owned-book sets: administrators and the profile's own user.
func CanManageProfile(actor *Actor, profileID string) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin || actor.ProfileID == profileID
}
