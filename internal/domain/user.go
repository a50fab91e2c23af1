package domain

// Role controls what a user may do. Admins manage the catalog, everybody
// else reads it and writes reviews.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account document. The ID is the authentication subject, not a
// generated entity id, so an account maps to exactly one document.
type User struct {
	Timestamps
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	Role            Role   `json:"role"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
