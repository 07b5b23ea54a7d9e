package usecase

import (
	"context"
	"errors"
	"os"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Miro-wq/phonebook-api/internal/avatar"
	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/repository"
)

// UserUsecase defines the interface for profile mutation use cases.
type UserUsecase interface {
	UpdateSubscription(ctx context.Context, userID, subscription string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID, tempPath, originalName string) (string, error)
}

type userUsecase struct {
	userRepo    repository.UserRepository
	avatarStore *avatar.Store
}

// NewUserUsecase creates a UserUsecase.
func NewUserUsecase(userRepo repository.UserRepository, avatarStore *avatar.Store) UserUsecase {
	return &userUsecase{
		userRepo:    userRepo,
		avatarStore: avatarStore,
	}
}

func (u *userUsecase) UpdateSubscription(ctx context.Context, userID, subscription string) (*model.User, error) {
	user, err := u.userRepo.UpdateSubscription(ctx, userID, subscription)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// UpdateAvatar normalizes the uploaded image, stores it, and persists the new
// avatar URL. The temporary upload artifact is removed whether or not the
// processing succeeds.
func (u *userUsecase) UpdateAvatar(ctx context.Context, userID, tempPath, originalName string) (string, error) {
	defer os.Remove(tempPath)

	filename, err := u.avatarStore.Process(tempPath, userID, originalName)
	if err != nil {
		return "", err
	}

	avatarURL := "/avatars/" + filename

	if _, err := u.userRepo.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}

		return "", err
	}

	return avatarURL, nil
}
