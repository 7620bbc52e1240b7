package domain

// ConnectedMember is the registry's snapshot of a user at connect time.
// Later profile changes do not update already-connected members.
type ConnectedMember struct {
	Username string `json:"username"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// NewConnectedMember avoids raw literals in the orchestration layer and
// keeps the snapshot rule obvious.
func NewConnectedMember(user *User) ConnectedMember {
	return ConnectedMember{Username: user.Username, ImageURL: user.ImageURL}
}
