package postgres

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, username, email, password_hash, profile_pic, location, dob, following, followers, created_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, username, email, password_hash, profile_pic, location, dob, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Username, user.Email, user.PasswordHash,
		user.ProfilePic, user.Location, user.DOB, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return errors.Wrap(err, "inserting user")
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	query := "SELECT " + userColumns + " FROM users WHERE id = ANY($1) ORDER BY array_position($1, id)"
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning user")
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update repository.ProfileUpdate) (*domain.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($1, name),
			location = COALESCE($2, location),
			dob = COALESCE($3, dob)
		WHERE id = $4
		RETURNING ` + userColumns

	user, err := r.scanUser(ctx, query, update.Name, update.Location, update.DOB, id)
	if err != nil {
		return nil, errors.Wrap(err, "updating user profile")
	}
	if user == nil {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) SetProfilePic(ctx context.Context, id uuid.UUID, ref string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET profile_pic = $1 WHERE id = $2`, ref, id)
	if err != nil {
		return errors.Wrap(err, "updating profile picture")
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		following, err := lockUserPair(ctx, tx, followerID, followeeID)
		if err != nil {
			return err
		}
		if slices.Contains(following, followeeID) {
			return repository.ErrDuplicate
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET following = array_append(following, $2) WHERE id = $1`,
			followerID, followeeID,
		); err != nil {
			return errors.Wrap(err, "appending to following")
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET followers = array_append(followers, $2) WHERE id = $1`,
			followeeID, followerID,
		); err != nil {
			return errors.Wrap(err, "appending to followers")
		}
		return nil
	})
}

func (r *UserRepo) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockUserPair(ctx, tx, followerID, followeeID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET following = array_remove(following, $2) WHERE id = $1`,
			followerID, followeeID,
		); err != nil {
			return errors.Wrap(err, "removing from following")
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET followers = array_remove(followers, $2) WHERE id = $1`,
			followeeID, followerID,
		); err != nil {
			return errors.Wrap(err, "removing from followers")
		}
		return nil
	})
}

// lockUserPair row-locks both users in id order, so two transactions on the
// same pair always acquire locks in the same sequence. It returns the
// follower's current following set.
func lockUserPair(ctx context.Context, tx pgx.Tx, followerID, followeeID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, following FROM users WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		[]uuid.UUID{followerID, followeeID},
	)
	if err != nil {
		return nil, errors.Wrap(err, "locking users")
	}
	defer rows.Close()

	var (
		found     int
		following []uuid.UUID
	)
	for rows.Next() {
		var id uuid.UUID
		var ids []uuid.UUID
		if err := rows.Scan(&id, &ids); err != nil {
			return nil, errors.Wrap(err, "scanning locked user")
		}
		found++
		if id == followerID {
			following = ids
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "locking users")
	}
	if found < 2 {
		return nil, repository.ErrNotFound
	}
	return following, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUserRow(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning user")
	}
	return u, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&u.ProfilePic, &u.Location, &u.DOB,
		&u.Following, &u.Followers, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Following = nonNil(u.Following)
	u.Followers = nonNil(u.Followers)
	return &u, nil
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
