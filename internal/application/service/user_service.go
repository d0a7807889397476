package service

import (
	"context"
	"io"

	"golang.org/x/crypto/bcrypt"

	"github.com/sugun-2430327/project-backend/internal/application/authz"
	"github.com/sugun-2430327/project-backend/internal/application/port"
	"github.com/sugun-2430327/project-backend/internal/auth"
	"github.com/sugun-2430327/project-backend/internal/domain/entity"
	"github.com/sugun-2430327/project-backend/pkg/apperrors"
	"github.com/sugun-2430327/project-backend/pkg/utils"
)

// RegisterInput carries the fields of a self-service registration.
// IDProof is optional; when present it is persisted to file storage and
// the stored path recorded on the account.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	Role           entity.Role
	IncomePerAnnum float64
	IDProofName    string
	IDProof        io.Reader
}

// AuthResult is a successful login: the signed token plus the account
// it authenticates
type AuthResult struct {
	Token string
	User  *entity.User
}

// UserService covers registration, login and the admin user directory
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*entity.User, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	GetUser(ctx context.Context, caller entity.Identity, userID int64) (*entity.User, error)
	ListUsers(ctx context.Context, caller entity.Identity) ([]*entity.User, error)
}

type userServiceImpl struct {
	users   port.UserRepository
	storage port.FileStorage
	tokens  *auth.TokenService
	logger  Logger
}

// NewUserService creates a new UserService
func NewUserService(users port.UserRepository, storage port.FileStorage, tokens *auth.TokenService, logger Logger) UserService {
	return &userServiceImpl{users: users, storage: storage, tokens: tokens, logger: logger}
}

// Register creates an account. Self-registration is limited to the
// customer role; staff accounts are provisioned out of band.
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := utils.ValidateUsername(in.Username); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid username", err)
	}
	if len(in.Password) < 8 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email", err)
	}
	if in.Role == "" {
		in.Role = entity.RoleCustomer
	}
	if in.Role != entity.RoleCustomer {
		return nil, apperrors.New(apperrors.CodeForbidden, "self-registration is limited to customer accounts")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
	}

	user := &entity.User{
		Username:       in.Username,
		PasswordHash:   string(hash),
		Email:          in.Email,
		Role:           in.Role,
		IncomePerAnnum: in.IncomePerAnnum,
	}

	if in.IDProof != nil {
		path, err := s.storage.SaveIDProof(ctx, in.Username, in.IDProofName, in.IDProof)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to store ID proof", err)
		}
		user.IDProofPath = path
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues a signed token. The same
// Unauthorized answer covers unknown usernames and wrong passwords.
func (s *userServiceImpl) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid username or password")
	}

	token, err := s.tokens.Issue(entity.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to issue token", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return &AuthResult{Token: token, User: user}, nil
}

// GetUser retrieves an account. Users see themselves, admins everyone.
func (s *userServiceImpl) GetUser(ctx context.Context, caller entity.Identity, userID int64) (*entity.User, error) {
	if caller.Role != entity.RoleAdmin && caller.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "cannot view another user's account")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// ListUsers retrieves the full directory (admin only)
func (s *userServiceImpl) ListUsers(ctx context.Context, caller entity.Identity) ([]*entity.User, error) {
	if err := authz.Allow(caller, authz.OpListUsers); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}
