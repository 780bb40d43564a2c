package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/community"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// CommunityHandler exposes the forum endpoints.
type CommunityHandler struct {
	svc    community.Service
	logger *slog.Logger
}

// NewCommunityHandler constructs the forum handler.
func NewCommunityHandler(svc community.Service, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{svc: svc, logger: logger.With("component", "http.community")}
}

// ListCommunities returns all communities.
func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	items, err := h.svc.ListCommunities(c.Request.Context())
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": items})
}

// ListPosts returns posts, optionally filtered by community or search.
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	if term := c.Query("search"); term != "" {
		posts, err := h.svc.SearchPosts(c.Request.Context(), term, queryLimit(c))
		if err != nil {
			abortWithError(c, communityError(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts})
		return
	}
	posts, err := h.svc.ListPosts(c.Request.Context(), community.PostFilter{
		CommunityID: c.Query("communityId"),
		Limit:       queryLimit(c),
	})
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost publishes a new post.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req community.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), claims.UserID, claims.Email, claims.Role, req)
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post.
func (h *CommunityHandler) GetPost(c *gin.Context) {
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, post)
}

// VotePost records an up or down vote.
func (h *CommunityHandler) VotePost(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	post, err := h.svc.VotePost(c.Request.Context(), c.Param("id"), claims.UserID, req.Direction)
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, post)
}

// AddComment replies to a post.
func (h *CommunityHandler) AddComment(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		Text     string `json:"text"`
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), claims.UserID, claims.Email, req.Text, req.ParentID)
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments returns a post's comments.
func (h *CommunityHandler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// TrendingSearches returns the most common search terms.
func (h *CommunityHandler) TrendingSearches(c *gin.Context) {
	items, err := h.svc.TrendingSearches(c.Request.Context())
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": items})
}

// RelatedPosts returns posts similar to the given one.
func (h *CommunityHandler) RelatedPosts(c *gin.Context) {
	posts, err := h.svc.RelatedPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, communityError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func communityError(err error) *HTTPError {
	switch {
	case errors.Is(err, community.ErrPostNotFound), errors.Is(err, community.ErrCommunityNotFound):
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.IsCode(err, "invalid_input"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "community_failed", errMessage(err), err)
	}
}

func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
