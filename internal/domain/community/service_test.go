package community_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/community"
	"github.com/agriconnect/agriconnect/internal/infra/communityrepo"
	"github.com/agriconnect/agriconnect/internal/infra/trendstore"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

type stubEmbedder struct {
	configured bool
	err        error
}

func (s *stubEmbedder) Configured() bool { return s.configured }

// EmbedContent maps known test posts onto fixed vectors so similarity
// ordering is deterministic.
func (s *stubEmbedder) EmbedContent(ctx context.Context, model, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch {
	case strings.Contains(text, "Banana wilt"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "Banana fertilizer"):
		return []float32{0.9, 0.1, 0}, nil
	case strings.Contains(text, "Tractor loan"):
		return []float32{0, 0, 1}, nil
	}
	return []float32{0, 0, 0}, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(embedder community.Embedder) community.Service {
	return community.NewService(
		community.Config{EmbeddingModel: "text-embedding-004"},
		communityrepo.NewMemoryRepository(),
		trendstore.NewMemoryStore(),
		embedder,
		newTestLogger(),
	)
}

func postReq(title, text, communityID string) community.CreatePostRequest {
	return community.CreatePostRequest{Title: title, Text: text, CommunityID: communityID}
}

func TestListCommunitiesSeeded(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	got, err := svc.ListCommunities(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, got)

	ids := make(map[string]bool)
	for _, c := range got {
		ids[c.ID] = true
	}
	require.True(t, ids["banana-growers"])
	require.True(t, ids["general"])
}

func TestCreateAndGetPost(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	post, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("Leaf curl on cotton", "Seeing curled leaves after rain.", "cotton-farmers"))
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	require.Equal(t, "u1", post.UserID)
	require.Equal(t, "cotton-farmers", post.CommunityID)

	got, err := svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, post.Title, got.Title)

	_, err = svc.GetPost(context.Background(), "missing")
	require.ErrorIs(t, err, community.ErrPostNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	_, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("  ", "text", ""))
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("title", "text", "no-such-community"))
	require.ErrorIs(t, err, community.ErrCommunityNotFound)
}

func TestVotePost(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	post, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("title", "text", ""))
	require.NoError(t, err)

	got, err := svc.VotePost(context.Background(), post.ID, "u2", community.VoteUp)
	require.NoError(t, err)
	require.Equal(t, 1, got.UpvoteCount)

	// Changing the vote moves the count, it does not double it.
	got, err = svc.VotePost(context.Background(), post.ID, "u2", community.VoteDown)
	require.NoError(t, err)
	require.Zero(t, got.UpvoteCount)
	require.Equal(t, 1, got.DownvoteCount)

	_, err = svc.VotePost(context.Background(), post.ID, "u2", "sideways")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.VotePost(context.Background(), "missing", "u2", community.VoteUp)
	require.ErrorIs(t, err, community.ErrPostNotFound)
}

func TestAddAndListComments(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	post, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("title", "text", ""))
	require.NoError(t, err)

	comment, err := svc.AddComment(context.Background(), post.ID, "u2", "Suresh", "Try neem spray.", "")
	require.NoError(t, err)
	require.NotEmpty(t, comment.ID)

	reply, err := svc.AddComment(context.Background(), post.ID, "u3", "Mahesh", "Worked for me.", comment.ID)
	require.NoError(t, err)
	require.Equal(t, comment.ID, reply.ParentID)

	comments, err := svc.ListComments(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	got, err := svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.CommentCount)

	_, err = svc.AddComment(context.Background(), post.ID, "u2", "Suresh", "   ", "")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.AddComment(context.Background(), "missing", "u2", "Suresh", "hello", "")
	require.ErrorIs(t, err, community.ErrPostNotFound)
}

func TestSearchPostsRecordsTrending(t *testing.T) {
	svc := newTestService(&stubEmbedder{})

	_, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("Leaf curl on cotton", "Curled leaves after rain.", ""))
	require.NoError(t, err)

	posts, err := svc.SearchPosts(context.Background(), "Leaf Curl", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	_, err = svc.SearchPosts(context.Background(), "leaf curl", 10)
	require.NoError(t, err)

	trending, err := svc.TrendingSearches(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, trending)
	require.Equal(t, "leaf curl", trending[0].Term)
	require.Equal(t, 2, trending[0].Count)

	_, err = svc.SearchPosts(context.Background(), "  ", 10)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestRelatedPostsBySimilarity(t *testing.T) {
	svc := newTestService(&stubEmbedder{configured: true})

	wilt, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("Banana wilt", "Yellowing leaves on banana.", "banana-growers"))
	require.NoError(t, err)
	fert, err := svc.CreatePost(context.Background(), "u2", "Suresh", "farmer", postReq("Banana fertilizer", "Best urea dose for banana.", "banana-growers"))
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), "u3", "Mahesh", "farmer", postReq("Tractor loan", "Which bank gives best rates?", "general"))
	require.NoError(t, err)

	related, err := svc.RelatedPosts(context.Background(), wilt.ID)
	require.NoError(t, err)
	require.NotEmpty(t, related)
	require.Equal(t, fert.ID, related[0].ID)
	for _, p := range related {
		require.NotEqual(t, wilt.ID, p.ID)
	}
}

func TestRelatedPostsFallsBackToCommunity(t *testing.T) {
	svc := newTestService(&stubEmbedder{configured: true, err: errors.New("embedding down")})

	first, err := svc.CreatePost(context.Background(), "u1", "Ramesh", "farmer", postReq("Banana wilt", "Yellowing leaves.", "banana-growers"))
	require.NoError(t, err)
	second, err := svc.CreatePost(context.Background(), "u2", "Suresh", "farmer", postReq("Banana harvest", "When to cut bunches?", "banana-growers"))
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), "u3", "Mahesh", "farmer", postReq("Tractor loan", "Bank rates?", "general"))
	require.NoError(t, err)

	related, err := svc.RelatedPosts(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	require.Equal(t, second.ID, related[0].ID)
}
