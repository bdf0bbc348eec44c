package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
var ErrInvalidCredentials = errs.NewUnauthorizedError("invalid credentials")

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Avatar   string
}

type ProfileInput = database.ProfileFields

type LoginResult struct {
	User        *models.User
	AccessToken string
}

type UserService struct {
	db     database.Database
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer
	avatar AvatarStore
	logger zerolog.Logger

	// unknown emails are compared against this hash so both failures cost one comparison
	decoyOnce sync.Once
	decoyHash string
}

// NewUserService wires the account operations. avatar may be nil, in which case
// SetAvatar reports the feature as unavailable.
func NewUserService(db database.Database, hasher auth.PasswordHasher, tokens *auth.TokenIssuer, avatar AvatarStore) *UserService {
	return &UserService{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		avatar: avatar,
		logger: log.With().Str("serviceName", "userService").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account. A taken email is a conflict.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash password", err)
	}

	user := &models.User{
		Email:    normalizeEmail(input.Email),
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		Avatar:   input.Avatar,
		Role:     models.RoleUser,
	}
	if err := s.db.UserRepo().Create(ctx, user); err != nil {
		dbErr := errs.NewDatabaseError("create", "user", err)
		if errs.IsConflict(dbErr) {
			return nil, fmt.Errorf("email already registered: %w", errs.ErrConflict)
		}
		return nil, dbErr
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("User registered")
	return user, nil
}

func (s *UserService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error().Err(err).Msg("Hashing decoy password")
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

// Login checks the credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.db.UserRepo().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errs.IsNotFound(err) {
			_ = s.hasher.Compare(s.decoy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.IdentityOf(user))
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("issue token", err)
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]models.User, error) {
	users, err := s.db.UserRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.db.UserRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return user, nil
}

// GetUserDetails returns the profile of the signed-in user.
func (s *UserService) GetUserDetails(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.FindByID(ctx, id)
}

func (s *UserService) UpdateUserDetails(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.User, error) {
	user, err := s.db.UserRepo().UpdateProfile(ctx, id, input)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	return user, nil
}

// DeleteOne removes the user and everything it owns.
func (s *UserService) DeleteOne(ctx context.Context, id uuid.UUID) error {
	if err := s.db.UserRepo().Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "user", err)
	}
	s.logger.Info().Str("userId", id.String()).Msg("User deleted")
	return nil
}

// SetAvatar uploads a new avatar image and points the user's profile at it.
func (s *UserService) SetAvatar(ctx context.Context, id uuid.UUID, contentType string, size int64, body io.Reader) (*models.User, error) {
	if s.avatar == nil {
		return nil, errs.NewUnavailableError("avatar uploads are not configured")
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.avatar.Put(ctx, id, contentType, size, body)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("store avatar", err)
	}
	if err := s.db.UserRepo().SetAvatar(ctx, id, url); err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	return s.FindByID(ctx, id)
}
