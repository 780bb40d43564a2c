package community

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrCommunityNotFound = errors.New("community not found")
)

// Embedder turns text into a vector for similarity search. The Gemini
// client satisfies it.
type Embedder interface {
	Configured() bool
	EmbedContent(ctx context.Context, model, text string) ([]float32, error)
}

// Service exposes the forum operations.
type Service interface {
	ListCommunities(ctx context.Context) ([]Community, error)
	CreatePost(ctx context.Context, userID, author, authorRole string, req CreatePostRequest) (Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, error)
	VotePost(ctx context.Context, postID, userID, direction string) (Post, error)
	AddComment(ctx context.Context, postID, userID, author, text, parentID string) (Comment, error)
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	SearchPosts(ctx context.Context, term string, limit int) ([]Post, error)
	TrendingSearches(ctx context.Context) ([]TrendingSearch, error)
	RelatedPosts(ctx context.Context, postID string) ([]Post, error)
}

type service struct {
	cfg      Config
	repo     Repository
	trends   TrendStore
	embedder Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds the community service.
func NewService(cfg Config, repo Repository, trends TrendStore, embedder Embedder, logger *slog.Logger) Service {
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = 4
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = 8
	}
	return &service{
		cfg:      cfg,
		repo:     repo,
		trends:   trends,
		embedder: embedder,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) ListCommunities(ctx context.Context) ([]Community, error) {
	return s.repo.ListCommunities(ctx)
}

func (s *service) CreatePost(ctx context.Context, userID, author, authorRole string, req CreatePostRequest) (Post, error) {
	title := strings.TrimSpace(req.Title)
	text := strings.TrimSpace(req.Text)
	if title == "" || text == "" {
		return Post{}, apperrors.Wrap("invalid_input", "title and text are required", nil)
	}
	if req.CommunityID != "" {
		if _, ok, err := s.repo.GetCommunity(ctx, req.CommunityID); err != nil {
			return Post{}, apperrors.Wrap("storage_error", "failed to load community", err)
		} else if !ok {
			return Post{}, ErrCommunityNotFound
		}
	}

	post := Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Author:      author,
		AuthorRole:  authorRole,
		Title:       title,
		Text:        text,
		CommunityID: req.CommunityID,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreatePost(ctx, post, s.embed(ctx, title+"\n"+text)); err != nil {
		return Post{}, apperrors.Wrap("storage_error", "failed to create post", err)
	}
	return post, nil
}

func (s *service) GetPost(ctx context.Context, id string) (Post, error) {
	post, ok, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, apperrors.Wrap("storage_error", "failed to load post", err)
	}
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return post, nil
}

func (s *service) ListPosts(ctx context.Context, filter PostFilter) ([]Post, error) {
	return s.repo.ListPosts(ctx, filter)
}

func (s *service) VotePost(ctx context.Context, postID, userID, direction string) (Post, error) {
	if direction != VoteUp && direction != VoteDown {
		return Post{}, apperrors.Wrap("invalid_input", "vote must be 'up' or 'down'", nil)
	}
	post, err := s.repo.SetVote(ctx, postID, userID, direction)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Post{}, err
		}
		return Post{}, apperrors.Wrap("storage_error", "failed to record vote", err)
	}
	return post, nil
}

func (s *service) AddComment(ctx context.Context, postID, userID, author, text, parentID string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, apperrors.Wrap("invalid_input", "comment text is required", nil)
	}
	if _, err := s.GetPost(ctx, postID); err != nil {
		return Comment{}, err
	}
	comment := Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Author:    author,
		Text:      text,
		ParentID:  parentID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return Comment{}, apperrors.Wrap("storage_error", "failed to create comment", err)
	}
	return comment, nil
}

func (s *service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, postID)
}

func (s *service) SearchPosts(ctx context.Context, term string, limit int) ([]Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.Wrap("invalid_input", "search term is required", nil)
	}
	if s.trends != nil {
		if err := s.trends.RecordSearch(ctx, strings.ToLower(term)); err != nil {
			s.logger.Warn("failed to record search term", "term", term, "error", err)
		}
	}
	return s.repo.ListPosts(ctx, PostFilter{Search: term, Limit: limit})
}

func (s *service) TrendingSearches(ctx context.Context) ([]TrendingSearch, error) {
	if s.trends == nil {
		return []TrendingSearch{}, nil
	}
	return s.trends.Trending(ctx, s.cfg.TrendingLimit)
}

// RelatedPosts ranks other posts by embedding similarity to the given
// post. When embeddings are unavailable it falls back to posts from the
// same community.
func (s *service) RelatedPosts(ctx context.Context, postID string) ([]Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if vec := s.embed(ctx, post.Title+"\n"+post.Text); len(vec) > 0 {
		neighbors, err := s.repo.NearestPosts(ctx, vec, s.cfg.RelatedLimit+1)
		if err == nil {
			return excludePost(neighbors, postID, s.cfg.RelatedLimit), nil
		}
		s.logger.Warn("similarity search failed", "post_id", postID, "error", err)
	}
	siblings, err := s.repo.ListPosts(ctx, PostFilter{CommunityID: post.CommunityID, Limit: s.cfg.RelatedLimit + 1})
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load related posts", err)
	}
	return excludePost(siblings, postID, s.cfg.RelatedLimit), nil
}

func (s *service) embed(ctx context.Context, text string) []float32 {
	if s.embedder == nil || !s.embedder.Configured() {
		return nil
	}
	vec, err := s.embedder.EmbedContent(ctx, s.cfg.EmbeddingModel, text)
	if err != nil {
		s.logger.Warn("embedding failed", "error", err)
		return nil
	}
	return vec
}

func excludePost(posts []Post, id string, limit int) []Post {
	out := make([]Post, 0, limit)
	for _, p := range posts {
		if p.ID == id {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
