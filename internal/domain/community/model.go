package community

import "time"

// Community is a crop- or topic-centric forum, keyed by slug.
type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	PostCount   int       `json:"postCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Post is a forum entry.
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"uid"`
	Author        string    `json:"author"`
	AuthorRole    string    `json:"authorRole"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	CommunityID   string    `json:"communityId"`
	ImageURL      string    `json:"imageUrl"`
	UpvoteCount   int       `json:"upvoteCount"`
	DownvoteCount int       `json:"downvoteCount"`
	CommentCount  int       `json:"commentCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Comment belongs to a post; ParentID empty means top level.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"uid"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	ParentID  string    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// PostFilter narrows post listings.
type PostFilter struct {
	CommunityID string
	Search      string
	Limit       int
}

// TrendingSearch is one ranked community search term.
type TrendingSearch struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// CreatePostRequest captures the posting payload.
type CreatePostRequest struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	CommunityID string `json:"communityId"`
	ImageURL    string `json:"imageUrl"`
}

// Config wires runtime settings for the community domain.
type Config struct {
	EmbeddingModel string
	RelatedLimit   int
	TrendingLimit  int
}
