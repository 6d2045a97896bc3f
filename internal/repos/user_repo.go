package repos

import (
	"github.com/jmoiron/sqlx"

	"chmlcart/internal/domain"
	"chmlcart/internal/query"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,name,email,password_hash,avatar,role,reset_token_hash,reset_token_expires,created_at,COALESCE(updated_at,'') AS updated_at`

// Filterable columns for the admin user listing.
var userFilterCols = map[string]bool{
	"name":  true,
	"email": true,
	"role":  true,
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,name,email,password_hash,avatar,role)
		VALUES(?,?,?,?,?,?)
	`, u.ID, u.Name, u.Email, u.Hash, u.Avatar, u.Role)
	return err
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List applies the query pipeline to the user collection: count first, then
// the page slice in stable order.
func (r *UserRepo) List(spec query.Spec, pageSize int) ([]domain.User, int, error) {
	where, args := spec.Where("name", userFilterCols)

	var total int
	if err := r.DB.Get(&total, `SELECT COUNT(*) FROM users WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var out []domain.User
	err := r.DB.Select(&out, `
		SELECT `+userCols+` FROM users
		WHERE `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, append(args, pageSize, spec.Offset(pageSize))...)
	return out, total, err
}

func (r *UserRepo) UpdateProfile(id, name, email, avatar string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET name=?, email=?, avatar=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, email, avatar, id)
	return err
}

func (r *UserRepo) UpdatePassword(id, hash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, hash, id)
	return err
}

// SetResetToken stores the hashed reset credential and its expiry as a pair.
func (r *UserRepo) SetResetToken(id, hash string, expires int64) error {
	_, err := r.DB.Exec(`
		UPDATE users SET reset_token_hash=?, reset_token_expires=? WHERE id=?
	`, hash, expires, id)
	return err
}

// ClearResetToken rolls back a pending reset, e.g. after a failed mail send.
func (r *UserRepo) ClearResetToken(id string) error {
	_, err := r.DB.Exec(`UPDATE users SET reset_token_hash='', reset_token_expires=0 WHERE id=?`, id)
	return err
}

// ByResetHash looks up a user holding a live (unexpired) reset credential.
// Expiry is checked here, at consumption time only.
func (r *UserRepo) ByResetHash(hash string, now int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT `+userCols+` FROM users
		WHERE reset_token_hash=? AND reset_token_hash!='' AND reset_token_expires > ?
	`, hash, now)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ConsumeReset replaces the password and clears both reset fields in one
// statement so a reset token is single-use.
func (r *UserRepo) ConsumeReset(id, newHash string) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET password_hash=?, reset_token_hash='', reset_token_expires=0, updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, newHash, id)
	return err
}

// UpdateAdminFields is the admin-privileged update: name, email and role.
func (r *UserRepo) UpdateAdminFields(id, name, email, role string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET name=?, email=?, role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, email, role, id)
	return err
}

func (r *UserRepo) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=?`, id)
	return err
}
