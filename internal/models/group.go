package models

// Group represents a set of users who share expenses.
// A user must be a member to pay for or participate in the group's expenses.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64 `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// Members is the set of users in this group. Order is not significant.
	Members []User `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// MemberIDs returns the IDs of the group's members.
func (g *Group) MemberIDs() []int64 {
	ids := make([]int64, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether the user is a member of the group.
func (g *Group) HasMember(userID int64) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
