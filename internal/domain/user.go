package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Hash   string `db:"password_hash" json:"-"`
	Avatar string `db:"avatar" json:"avatar,omitempty"`
	Role   string `db:"role" json:"role"`

	// Reset credential pair. Both are set and cleared together; an expired
	// pair is ignored at consumption time rather than purged eagerly.
	ResetHash    string `db:"reset_token_hash" json:"-"`
	ResetExpires int64  `db:"reset_token_expires" json:"-"`

	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
