package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nostella/nostella/internal/domain"
	"github.com/nostella/nostella/internal/store"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, name, avatar_url, password_hash,
	is_verified, verification_code, code_expires_at, is_vip,
	created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		avatar    sql.NullString
		code      sql.NullString
		expiresAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &avatar, &u.PasswordHash,
		&u.IsVerified, &code, &expiresAt, &u.IsVIP,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.AvatarURL = mapNullStringPtr(avatar)
	u.VerificationCode = mapNullStringPtr(code)
	u.CodeExpiresAt = mapNullTimePtr(expiresAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, email, name, avatar_url, password_hash,
			is_verified, verification_code, code_expires_at, is_vip,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, mapOptionalString(u.AvatarURL), u.PasswordHash,
		u.IsVerified, mapOptionalString(u.VerificationCode), mapOptionalTime(u.CodeExpiresAt), u.IsVIP,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET verification_code = ?, code_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		code, expiresAt, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET is_verified = 1, verification_code = NULL, code_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateName(ctx context.Context, userID, name string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`,
		avatarURL, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetVIP(ctx context.Context, userID string, vip bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_vip = ?, updated_at = ? WHERE id = ?`,
		vip, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ClearExpiredCodes(ctx context.Context) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET verification_code = NULL, code_expires_at = NULL, updated_at = ?
		WHERE is_verified = 0
		  AND code_expires_at IS NOT NULL
		  AND code_expires_at < ?`,
		time.Now().UTC(), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// requireRow turns a zero-row UPDATE into ErrNotFound so services can
// distinguish "no such user" from success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
