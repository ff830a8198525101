package models

import (
	"errors"
	"strings"
	"time"
)

// Article is a post. Likes holds the ids of users who liked it.
type Article struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Likes       []string  `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleWithAuthor is the public feed entry.
type ArticleWithAuthor struct {
	Article
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// ArticleVersion is one description an article has had, the current one included.
type ArticleVersion struct {
	ID          string    `json:"id"`
	ArticleID   string    `json:"article_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateArticleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=20000"`
}

func (r *CreateArticleRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	return validateStruct(r)
}

// UpdateArticleRequest changes the title, the description or both.
// Blank values count as absent.
type UpdateArticleRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=20000"`
}

func (r *UpdateArticleRequest) Validate() error {
	r.Title = trimOrNil(r.Title)
	r.Description = trimOrNil(r.Description)
	if r.Title == nil && r.Description == nil {
		return errors.New("at least one of title or description must be provided")
	}
	return validateStruct(r)
}

// LikeResult is the like state after a like, unlike or toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
