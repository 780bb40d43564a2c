package communityrepo

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/agriconnect/agriconnect/internal/domain/community"
)

// PostgresRepository implements community.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListCommunities(ctx context.Context) ([]community.Community, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, image_url,
			(SELECT COUNT(*) FROM posts p WHERE p.community_id = c.id) AS post_count,
			created_at
		FROM communities c
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []community.Community
	for rows.Next() {
		var c community.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.PostCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCommunity(ctx context.Context, id string) (community.Community, bool, error) {
	var c community.Community
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, image_url, 0, created_at
		FROM communities
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.PostCount, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return community.Community{}, false, nil
	}
	if err != nil {
		return community.Community{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepository) CreatePost(ctx context.Context, post community.Post, embedding []float32) error {
	var vec any
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, user_id, author, author_role, title, text, community_id, image_url, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`, post.ID, post.UserID, post.Author, post.AuthorRole, post.Title, post.Text, post.CommunityID, post.ImageURL, vec, post.CreatedAt)
	return err
}

const postColumns = `
	p.id, p.user_id, p.author, p.author_role, p.title, p.text,
	COALESCE(p.community_id, ''), p.image_url, p.upvote_count, p.downvote_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id), p.created_at`

func (r *PostgresRepository) GetPost(ctx context.Context, id string) (community.Post, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
	post, err := scanPost(row)
	if err == pgx.ErrNoRows {
		return community.Post{}, false, nil
	}
	if err != nil {
		return community.Post{}, false, err
	}
	return post, true, nil
}

func (r *PostgresRepository) ListPosts(ctx context.Context, filter community.PostFilter) ([]community.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE 1=1`
	args := []any{}
	if filter.CommunityID != "" {
		args = append(args, filter.CommunityID)
		query += ` AND p.community_id = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := strconv.Itoa(len(args))
		query += ` AND (LOWER(p.title) LIKE $` + idx + ` OR LOWER(p.text) LIKE $` + idx + `)`
	}
	query += ` ORDER BY p.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostgresRepository) SetVote(ctx context.Context, postID, userID, direction string) (community.Post, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return community.Post{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO post_votes (post_id, user_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO UPDATE SET direction = EXCLUDED.direction
	`, postID, userID, direction); err != nil {
		return community.Post{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE posts SET
			upvote_count = (SELECT COUNT(*) FROM post_votes v WHERE v.post_id = $1 AND v.direction = 'up'),
			downvote_count = (SELECT COUNT(*) FROM post_votes v WHERE v.post_id = $1 AND v.direction = 'down')
		WHERE id = $1
	`, postID)
	if err != nil {
		return community.Post{}, err
	}

	row := tx.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, postID)
	post, err := scanPost(row)
	if err == pgx.ErrNoRows {
		return community.Post{}, community.ErrPostNotFound
	}
	if err != nil {
		return community.Post{}, err
	}
	return post, tx.Commit(ctx)
}

// NearestPosts returns the closest pgvector matches.
func (r *PostgresRepository) NearestPosts(ctx context.Context, embedding []float32, limit int) ([]community.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.embedding IS NOT NULL
		ORDER BY p.embedding <-> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostgresRepository) CreateComment(ctx context.Context, comment community.Comment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, user_id, author, text, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`, comment.ID, comment.PostID, comment.UserID, comment.Author, comment.Text, comment.ParentID, comment.CreatedAt)
	return err
}

func (r *PostgresRepository) ListComments(ctx context.Context, postID string) ([]community.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, user_id, author, text, COALESCE(parent_id, ''), created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []community.Comment
	for rows.Next() {
		var c community.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Author, &c.Text, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (community.Post, error) {
	var p community.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Author, &p.AuthorRole, &p.Title, &p.Text,
		&p.CommunityID, &p.ImageURL, &p.UpvoteCount, &p.DownvoteCount, &p.CommentCount, &p.CreatedAt)
	return p, err
}

func collectPosts(rows pgx.Rows) ([]community.Post, error) {
	var out []community.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}

var _ community.Repository = (*PostgresRepository)(nil)
