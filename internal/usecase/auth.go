package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Miro-wq/phonebook-api/internal/auth"
	"github.com/Miro-wq/phonebook-api/internal/avatar"
	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/repository"
	"github.com/Miro-wq/phonebook-api/internal/security"
)

var (
	ErrEmailInUse           = errors.New("email in use")
	ErrInvalidCredentials   = errors.New("email or password is wrong")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyVerified      = errors.New("verification has already been passed")
	ErrVerificationNotFound = errors.New("verification token not found")
)

// VerificationMailer dispatches account verification emails. Sends are
// best-effort; a failed send never mutates user state.
type VerificationMailer interface {
	SendVerificationEmail(to, verifyURL string) error
}

// AuthUsecase defines the interface for account lifecycle use cases.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (string, *model.User, error)
	Logout(ctx context.Context, userID string) error
	Verify(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
}

// SignUpParams defines the parameters for user registration.
type SignUpParams struct {
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

type authUsecase struct {
	userRepo      repository.UserRepository
	jwtAuth       auth.JWTAuthenticator
	mailer        VerificationMailer
	logger        *zerolog.Logger
	publicBaseURL string
}

// NewAuthUsecase creates an AuthUsecase backed by the given collaborators.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	mailer VerificationMailer,
	logger *zerolog.Logger,
	publicBaseURL string,
) AuthUsecase {
	return &authUsecase{
		userRepo:      userRepo,
		jwtAuth:       jwtAuth,
		mailer:        mailer,
		logger:        logger,
		publicBaseURL: publicBaseURL,
	}
}

// SignUp registers a new, unverified user and dispatches the verification
// email. The pre-create email lookup leaves a benign race window; the unique
// index on email closes it by surfacing a duplicate-key error.
func (u *authUsecase) SignUp(ctx context.Context, params SignUpParams) (*model.User, error) {
	_, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return nil, ErrEmailInUse
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:             params.Email,
		PasswordHash:      passwordHash,
		Subscription:      model.SubscriptionStarter,
		Verified:          false,
		VerificationToken: uuid.NewString(),
		AvatarURL:         avatar.DefaultURL(params.Email),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailInUse
		}

		return nil, err
	}

	u.dispatchVerificationEmail(user.Email, user.VerificationToken)

	return user, nil
}

// Login verifies credentials, issues a token, and stores it as the user's
// current session token. The error is uniform for unknown email and wrong
// password. Unverified users may log in.
func (u *authUsecase) Login(ctx context.Context, params LoginParams) (string, *model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return "", nil, err
	} else if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := u.jwtAuth.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", nil, err
	}

	// Persisting the token is what makes it "current": any token issued by
	// an earlier login stops matching and the auth gate rejects it.
	user, err = u.userRepo.UpdateSessionToken(ctx, user.ID.Hex(), token)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout clears the stored session token, invalidating every outstanding
// bearer token for the user.
func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	_, err := u.userRepo.UpdateSessionToken(ctx, userID, "")
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	return nil
}

// Verify resolves a verification token, marks the user verified, and clears
// the token.
func (u *authUsecase) Verify(ctx context.Context, token string) error {
	user, err := u.userRepo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrVerificationNotFound
		}

		return err
	}

	if _, err := u.userRepo.MarkVerified(ctx, user.ID.Hex()); err != nil {
		return err
	}

	return nil
}

// ResendVerification re-sends the verification email, reusing the stored
// token rather than rotating it.
func (u *authUsecase) ResendVerification(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	u.dispatchVerificationEmail(user.Email, user.VerificationToken)

	return nil
}

func (u *authUsecase) dispatchVerificationEmail(email, token string) {
	verifyURL := fmt.Sprintf("%s/users/verify/%s", u.publicBaseURL, token)

	go func() {
		if err := u.mailer.SendVerificationEmail(email, verifyURL); err != nil {
			u.logger.Error().Err(err).Str("email", email).Msg("failed to send verification email")
		}
	}()
}
