package services

import (
	"context"
	"fmt"
	"log"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
)

// UserService covers profiles and the follow graph.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	// GetProfile returns the user with id. The recency list is included only
	// when viewer is that user.
	GetProfile(ctx context.Context, viewer *models.User, id string) (*models.UserProfile, error)
	// UpdateProfile renames the user and returns a fresh access token carrying
	// the new name.
	UpdateProfile(ctx context.Context, user *models.User, req *models.UpdateProfileRequest) (*ProfileUpdate, error)
	ToggleFollow(ctx context.Context, user *models.User, targetID string) (*models.FollowResult, error)
}

// ProfileUpdate is the response body of PATCH /api/users/me.
type ProfileUpdate struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

type userService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	articleRepo repository.ArticleRepository
	contactRepo repository.ContactRepository
	authService AuthService
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	articleRepo repository.ArticleRepository,
	contactRepo repository.ContactRepository,
	authService AuthService,
) UserService {
	return &userService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		articleRepo: articleRepo,
		contactRepo: contactRepo,
		authService: authService,
	}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetProfile(ctx context.Context, viewer *models.User, id string) (*models.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.Followers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.Following(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := s.articleRepo.IDsByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		User:      *user,
		Followers: followers,
		Following: following,
		Articles:  articles,
	}

	if viewer != nil && viewer.ID == id {
		recent, err := s.contactRepo.RecentIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		profile.RecentContacts = recent
	}

	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *models.User, req *models.UpdateProfileRequest) (*ProfileUpdate, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.userRepo.UpdateName(ctx, user.ID, req.Name); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.authService.IssueAccessToken(updated)
	if err != nil {
		return nil, err
	}

	return &ProfileUpdate{User: *updated, AccessToken: token}, nil
}

func (s *userService) ToggleFollow(ctx context.Context, user *models.User, targetID string) (*models.FollowResult, error) {
	if targetID == user.ID {
		return nil, fmt.Errorf("%w: you cannot follow yourself", pkg.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	removed, err := s.followRepo.Remove(ctx, user.ID, targetID)
	if err != nil {
		return nil, err
	}
	if removed {
		log.Printf("[user] %s unfollowed %s", user.ID, targetID)
		return &models.FollowResult{Following: false}, nil
	}

	if _, err := s.followRepo.Add(ctx, user.ID, targetID); err != nil {
		return nil, err
	}
	log.Printf("[user] %s followed %s", user.ID, targetID)
	return &models.FollowResult{Following: true}, nil
}
