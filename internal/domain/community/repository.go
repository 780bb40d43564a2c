package community

import "context"

// Repository persists communities, posts, comments and votes.
type Repository interface {
	ListCommunities(ctx context.Context) ([]Community, error)
	GetCommunity(ctx context.Context, id string) (Community, bool, error)

	CreatePost(ctx context.Context, post Post, embedding []float32) error
	GetPost(ctx context.Context, id string) (Post, bool, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, error)
	// SetVote replaces the user's previous vote on the post, if any, and
	// returns the post with refreshed counters.
	SetVote(ctx context.Context, postID, userID, direction string) (Post, error)
	// NearestPosts returns posts ordered by embedding similarity.
	NearestPosts(ctx context.Context, embedding []float32, limit int) ([]Post, error)

	CreateComment(ctx context.Context, comment Comment) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)
}

// TrendStore tracks search term frequencies.
type TrendStore interface {
	RecordSearch(ctx context.Context, term string) error
	Trending(ctx context.Context, limit int) ([]TrendingSearch, error)
}
