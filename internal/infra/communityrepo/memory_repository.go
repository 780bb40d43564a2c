package communityrepo

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agriconnect/agriconnect/internal/domain/community"
)

// MemoryRepository is an in-memory community store for tests and dev.
type MemoryRepository struct {
	mu          sync.RWMutex
	communities map[string]community.Community
	posts       map[string]community.Post
	embeddings  map[string][]float32
	votes       map[string]map[string]string
	comments    map[string][]community.Comment
}

// NewMemoryRepository constructs the repository pre-seeded with the
// default crop communities.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		communities: make(map[string]community.Community),
		posts:       make(map[string]community.Post),
		embeddings:  make(map[string][]float32),
		votes:       make(map[string]map[string]string),
		comments:    make(map[string][]community.Comment),
	}
	for _, c := range defaultCommunities() {
		r.communities[c.ID] = c
	}
	return r
}

func defaultCommunities() []community.Community {
	now := time.Now().UTC()
	seed := []struct{ id, name, desc string }{
		{"banana-growers", "Banana Growers", "Cultivation, harvest and market tips for banana farmers"},
		{"cotton-farmers", "Cotton Farmers", "Pest management and price discussion for cotton"},
		{"wheat-belt", "Wheat Belt", "Rabi season planning and wheat mandi updates"},
		{"organic-farming", "Organic Farming", "Chemical-free cultivation practices and certification"},
		{"general", "General Discussion", "Everything else about farming life"},
	}
	out := make([]community.Community, 0, len(seed))
	for _, s := range seed {
		out = append(out, community.Community{ID: s.id, Name: s.name, Description: s.desc, CreatedAt: now})
	}
	return out
}

func (r *MemoryRepository) ListCommunities(_ context.Context) ([]community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]community.Community, 0, len(r.communities))
	for _, c := range r.communities {
		c.PostCount = r.countPosts(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) countPosts(communityID string) int {
	n := 0
	for _, p := range r.posts {
		if p.CommunityID == communityID {
			n++
		}
	}
	return n
}

func (r *MemoryRepository) GetCommunity(_ context.Context, id string) (community.Community, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.communities[id]
	return c, ok, nil
}

func (r *MemoryRepository) CreatePost(_ context.Context, post community.Post, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	if len(embedding) > 0 {
		r.embeddings[post.ID] = embedding
	}
	return nil
}

func (r *MemoryRepository) GetPost(_ context.Context, id string) (community.Post, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if ok {
		p.CommentCount = len(r.comments[id])
	}
	return p, ok, nil
}

func (r *MemoryRepository) ListPosts(_ context.Context, filter community.PostFilter) ([]community.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(filter.Search)
	var out []community.Post
	for _, p := range r.posts {
		if filter.CommunityID != "" && p.CommunityID != filter.CommunityID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) && !strings.Contains(strings.ToLower(p.Text), needle) {
			continue
		}
		p.CommentCount = len(r.comments[p.ID])
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) SetVote(_ context.Context, postID, userID, direction string) (community.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return community.Post{}, community.ErrPostNotFound
	}
	if r.votes[postID] == nil {
		r.votes[postID] = make(map[string]string)
	}
	r.votes[postID][userID] = direction
	up, down := 0, 0
	for _, d := range r.votes[postID] {
		if d == community.VoteUp {
			up++
		} else {
			down++
		}
	}
	post.UpvoteCount = up
	post.DownvoteCount = down
	r.posts[postID] = post
	post.CommentCount = len(r.comments[postID])
	return post, nil
}

func (r *MemoryRepository) NearestPosts(_ context.Context, embedding []float32, limit int) ([]community.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	type scored struct {
		post community.Post
		dist float64
	}
	var candidates []scored
	for id, vec := range r.embeddings {
		post, ok := r.posts[id]
		if !ok || len(vec) != len(embedding) {
			continue
		}
		post.CommentCount = len(r.comments[id])
		candidates = append(candidates, scored{post: post, dist: euclidean(embedding, vec)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	out := make([]community.Post, 0, limit)
	for _, c := range candidates {
		out = append(out, c.post)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateComment(_ context.Context, comment community.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[comment.PostID] = append(r.comments[comment.PostID], comment)
	return nil
}

func (r *MemoryRepository) ListComments(_ context.Context, postID string) ([]community.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]community.Comment, len(r.comments[postID]))
	copy(out, r.comments[postID])
	return out, nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ community.Repository = (*MemoryRepository)(nil)
