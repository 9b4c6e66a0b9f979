package domain

type Role string

const (
	RoleViewer    Role = "viewer"
	RoleModerator Role = "moderator"
)

// Participant is the caller of a coordinator operation.
type Participant struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Presenter bool   `json:"presenter,omitempty"`
}

func (p Participant) IsModerator() bool {
	return p.Role == RoleModerator
}
