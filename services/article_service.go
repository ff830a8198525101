package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
)

// ArticleService manages articles, their version history and likes.
type ArticleService interface {
	Create(ctx context.Context, author *models.User, req *models.CreateArticleRequest) (*models.Article, error)
	// ListForUser returns what the user's dashboard shows: admins see their
	// own articles, everyone else sees their own plus every admin's.
	ListForUser(ctx context.Context, user *models.User) ([]models.Article, error)
	ListAll(ctx context.Context) ([]models.ArticleWithAuthor, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Update(ctx context.Context, user *models.User, id string, req *models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, user *models.User, id string) error
	ListVersions(ctx context.Context, id string) ([]models.ArticleVersion, error)

	// Like is idempotent; only the call that creates the like notifies the author.
	Like(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error)
	Unlike(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error)
	ToggleLike(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error)
}

type articleService struct {
	db          *sql.DB
	articleRepo repository.ArticleRepository
	likeRepo    repository.LikeRepository
	notifier    NotificationService
}

func NewArticleService(
	db *sql.DB,
	articleRepo repository.ArticleRepository,
	likeRepo repository.LikeRepository,
	notifier NotificationService,
) ArticleService {
	return &articleService{
		db:          db,
		articleRepo: articleRepo,
		likeRepo:    likeRepo,
		notifier:    notifier,
	}
}

// Create stores the article together with its first version.
func (s *articleService) Create(ctx context.Context, author *models.User, req *models.CreateArticleRequest) (*models.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	dup, err := s.articleRepo.ExistsForUser(ctx, author.ID, req.Title, req.Description)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: you already have an article with this title or description", pkg.ErrAlreadyExists)
	}

	article := &models.Article{
		UserID:      author.ID,
		Title:       req.Title,
		Description: req.Description,
		Likes:       []string{},
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		articles := repository.NewSQLiteArticleRepo(tx)
		if err := articles.Create(ctx, article); err != nil {
			return err
		}
		return articles.CreateVersion(ctx, &models.ArticleVersion{
			ArticleID:   article.ID,
			Description: article.Description,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[article] created %s by %s", article.ID, author.ID)
	return article, nil
}

func (s *articleService) ListForUser(ctx context.Context, user *models.User) ([]models.Article, error) {
	return s.articleRepo.ListByAuthors(ctx, user.ID, !user.IsAdmin())
}

func (s *articleService) ListAll(ctx context.Context) ([]models.ArticleWithAuthor, error) {
	return s.articleRepo.ListAll(ctx)
}

func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

// Update applies a title and/or description change. An unchanged description
// is ignored; a description the article already had is rejected; a new one
// becomes the current description and is appended to the history.
func (s *articleService) Update(ctx context.Context, user *models.User, id string, req *models.UpdateArticleRequest) (*models.Article, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	article, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	newVersion := false
	if req.Description != nil && *req.Description != article.Description {
		seen, err := s.articleRepo.VersionExists(ctx, article.ID, *req.Description)
		if err != nil {
			return nil, err
		}
		if seen {
			return nil, fmt.Errorf("%w: this description already exists in an older version of the article", pkg.ErrBadRequest)
		}
		article.Description = *req.Description
		newVersion = true
	}

	titleChanged := req.Title != nil && *req.Title != article.Title
	if titleChanged {
		article.Title = *req.Title
	}

	if !newVersion && !titleChanged {
		return article, nil
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		articles := repository.NewSQLiteArticleRepo(tx)
		if err := articles.Update(ctx, article); err != nil {
			return err
		}
		if !newVersion {
			return nil
		}
		return articles.CreateVersion(ctx, &models.ArticleVersion{
			ArticleID:   article.ID,
			Description: article.Description,
		})
	})
	if err != nil {
		return nil, err
	}

	return article, nil
}

func (s *articleService) Delete(ctx context.Context, user *models.User, id string) error {
	if _, err := s.getOwned(ctx, user, id); err != nil {
		return err
	}
	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("[article] deleted %s by %s", id, user.ID)
	return nil
}

func (s *articleService) ListVersions(ctx context.Context, id string) ([]models.ArticleVersion, error) {
	if _, err := s.articleRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.articleRepo.ListVersions(ctx, id)
}

func (s *articleService) Like(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.like(ctx, actor, article)
}

func (s *articleService) Unlike(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error) {
	if _, err := s.articleRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.unlike(ctx, actor, id)
}

func (s *articleService) ToggleLike(ctx context.Context, actor *models.User, id string) (*models.LikeResult, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if liked {
		return s.unlike(ctx, actor, id)
	}
	return s.like(ctx, actor, article)
}

func (s *articleService) like(ctx context.Context, actor *models.User, article *models.Article) (*models.LikeResult, error) {
	added, err := s.likeRepo.Add(ctx, article.ID, actor.ID)
	if err != nil {
		return nil, err
	}

	if added {
		if _, err := s.notifier.NotifyLike(ctx, article.UserID, actor, article); err != nil {
			log.Printf("[article] like on %s stored but notification failed: %v", article.ID, err)
		}
	}

	return s.likeResult(ctx, article.ID, true)
}

func (s *articleService) unlike(ctx context.Context, actor *models.User, articleID string) (*models.LikeResult, error) {
	if _, err := s.likeRepo.Remove(ctx, articleID, actor.ID); err != nil {
		return nil, err
	}
	return s.likeResult(ctx, articleID, false)
}

func (s *articleService) likeResult(ctx context.Context, articleID string, liked bool) (*models.LikeResult, error) {
	count, err := s.likeRepo.Count(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{Liked: liked, LikeCount: count}, nil
}

func (s *articleService) getOwned(ctx context.Context, user *models.User, id string) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.UserID != user.ID {
		return nil, fmt.Errorf("%w: you do not own this article", pkg.ErrForbidden)
	}
	return article, nil
}
