package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
)

const tweetColumns = `id, seq, content, image, tweeted_by, likes, retweet_by, replies, parent_id, created_at`

type TweetRepo struct {
	pool *pgxpool.Pool
}

func NewTweetRepo(pool *pgxpool.Pool) *TweetRepo {
	return &TweetRepo{pool: pool}
}

func (r *TweetRepo) Create(ctx context.Context, tweet *domain.Tweet) error {
	return insertTweet(ctx, r.pool, tweet)
}

func (r *TweetRepo) CreateReply(ctx context.Context, reply *domain.Tweet) error {
	if reply.ParentID == nil {
		return errors.New("reply without parent")
	}
	parentID := *reply.ParentID

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM tweets WHERE id = $1 FOR UPDATE`, parentID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "locking parent tweet")
		}

		if err := insertTweet(ctx, tx, reply); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE tweets SET replies = array_append(replies, $2) WHERE id = $1`,
			parentID, reply.ID,
		); err != nil {
			return errors.Wrap(err, "appending reply to parent")
		}
		return nil
	})
}

func (r *TweetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error) {
	t, err := scanTweetRow(r.pool.QueryRow(ctx, "SELECT "+tweetColumns+" FROM tweets WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning tweet")
	}
	return t, nil
}

func (r *TweetRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tweet, error) {
	if len(ids) == 0 {
		return []domain.Tweet{}, nil
	}
	return r.list(ctx,
		"SELECT "+tweetColumns+" FROM tweets WHERE id = ANY($1) ORDER BY array_position($1, id)",
		ids,
	)
}

func (r *TweetRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tweet, error) {
	return r.list(ctx,
		"SELECT "+tweetColumns+" FROM tweets WHERE tweeted_by = $1 ORDER BY created_at DESC, seq DESC",
		authorID,
	)
}

func (r *TweetRepo) ListAll(ctx context.Context) ([]domain.Tweet, error) {
	return r.list(ctx, "SELECT "+tweetColumns+" FROM tweets ORDER BY created_at DESC, seq DESC")
}

func (r *TweetRepo) AddLike(ctx context.Context, tweetID, userID uuid.UUID) error {
	return r.addMember(ctx, "likes", tweetID, userID)
}

func (r *TweetRepo) RemoveLike(ctx context.Context, tweetID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tweets SET likes = array_remove(likes, $2) WHERE id = $1`,
		tweetID, userID,
	)
	if err != nil {
		return errors.Wrap(err, "removing like")
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TweetRepo) AddRetweet(ctx context.Context, tweetID, userID uuid.UUID) error {
	return r.addMember(ctx, "retweet_by", tweetID, userID)
}

func (r *TweetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting tweet")
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// addMember appends userID to the given array column unless it is already
// present. The membership test and append are a single statement, so
// concurrent callers cannot lose each other's updates.
func (r *TweetRepo) addMember(ctx context.Context, column string, tweetID, userID uuid.UUID) error {
	query := `UPDATE tweets SET ` + column + ` = array_append(` + column + `, $2)
		WHERE id = $1 AND NOT ($2 = ANY(` + column + `))`

	tag, err := r.pool.Exec(ctx, query, tweetID, userID)
	if err != nil {
		return errors.Wrapf(err, "appending to %s", column)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tweets WHERE id = $1)`, tweetID,
	).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking tweet")
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrDuplicate
}

func (r *TweetRepo) list(ctx context.Context, query string, args ...any) ([]domain.Tweet, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing tweets")
	}
	defer rows.Close()

	tweets := []domain.Tweet{}
	for rows.Next() {
		t, err := scanTweetRow(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning tweet")
		}
		tweets = append(tweets, *t)
	}
	return tweets, rows.Err()
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertTweet(ctx context.Context, db rowQuerier, t *domain.Tweet) error {
	query := `
		INSERT INTO tweets (id, content, image, tweeted_by, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`

	err := db.QueryRow(ctx, query,
		t.ID, t.Content, t.Image, t.TweetedBy, t.ParentID, t.CreatedAt,
	).Scan(&t.Seq)
	return errors.Wrap(err, "inserting tweet")
}

func scanTweetRow(row pgx.Row) (*domain.Tweet, error) {
	var t domain.Tweet
	err := row.Scan(
		&t.ID, &t.Seq, &t.Content, &t.Image, &t.TweetedBy,
		&t.Likes, &t.RetweetBy, &t.Replies, &t.ParentID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Likes = nonNil(t.Likes)
	t.RetweetBy = nonNil(t.RetweetBy)
	t.Replies = nonNil(t.Replies)
	return &t, nil
}
