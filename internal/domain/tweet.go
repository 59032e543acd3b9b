package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Tweet struct {
	ID        uuid.UUID   `json:"id"`
	Content   string      `json:"content"`
	Image     *string     `json:"image,omitempty"`
	TweetedBy uuid.UUID   `json:"tweeted_by"`
	Likes     []uuid.UUID `json:"likes"`
	RetweetBy []uuid.UUID `json:"retweet_by"`
	Replies   []uuid.UUID `json:"replies"`
	ParentID  *uuid.UUID  `json:"parent,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	// Seq is the insertion order, used to break created_at ties.
	Seq int64 `json:"-"`
}

func (t *Tweet) LikedBy(userID uuid.UUID) bool {
	return slices.Contains(t.Likes, userID)
}

func (t *Tweet) RetweetedBy(userID uuid.UUID) bool {
	return slices.Contains(t.RetweetBy, userID)
}

// TweetView is a tweet with its references resolved for presentation.
type TweetView struct {
	Tweet
	Author      *UserSummary  `json:"author"`
	Likers      []UserSummary `json:"likers,omitempty"`
	Retweeters  []UserSummary `json:"retweeters,omitempty"`
	ReplyTweets []TweetView   `json:"reply_tweets,omitempty"`
}

// Newer reports whether a sorts before b in a newest-first listing.
func Newer(a, b *Tweet) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}

// RemoveID returns a copy of ids without any occurrence of id.
func RemoveID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return slices.DeleteFunc(slices.Clone(ids), func(v uuid.UUID) bool { return v == id })
}
