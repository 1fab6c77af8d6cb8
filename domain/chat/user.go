package chat

// User is the profile of an identity as known by this service.
// Only Summary may leave the process; Email stays internal.
type User struct {
	ID           UserID
	Username     string
	Email        string
	FullName     string
	ProfileImage string
	CurrentTown  string
}

// UserSummary is the public view of an identity attached to chat records.
type UserSummary struct {
	ID           UserID `json:"_id"`
	Username     string `json:"username"`
	FullName     string `json:"fullName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CurrentTown  string `json:"currentTown,omitempty"`
}

// Projection lists the optional fields a caller context is entitled to see.
// Identity and username are always visible.
type Projection struct {
	FullName     bool
	ProfileImage bool
	CurrentTown  bool
}

// ChatProjection is what chat records expose about their participants.
var ChatProjection = Projection{FullName: true, ProfileImage: true, CurrentTown: true}

func (u User) Summary(p Projection) UserSummary {
	s := UserSummary{ID: u.ID, Username: u.Username}
	if p.FullName {
		s.FullName = u.FullName
	}
	if p.ProfileImage {
		s.ProfileImage = u.ProfileImage
	}
	if p.CurrentTown {
		s.CurrentTown = u.CurrentTown
	}
	return s
}

// UnknownUser is the summary used when no profile is stored for an identity.
func UnknownUser(id UserID) UserSummary {
	return UserSummary{ID: id}
}
