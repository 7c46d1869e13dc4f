package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type userService struct {
	repo      repositories.Repository
	tokens    TokenIssuer
	audit     *auditRecorder
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, tokens TokenIssuer, logger *slog.Logger, validator *validator.Validator) UserService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "accounts", Component: "user"})
	return &userService{
		repo:      repo,
		tokens:    tokens,
		audit:     newAuditRecorder(repo, opLogger),
		logger:    logger,
		opLogger:  opLogger,
		validator: validator,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	s.logger.Info("Creating user", "username", req.Username, "role", req.Role)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	exists, err := s.repo.User().ExistsByUsername(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}

	user := &models.User{
		Username:     username,
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID)
	return user, nil
}

// Authenticate checks the password and issues an access token. Unknown
// usernames and wrong passwords produce the same error.
func (s *userService) Authenticate(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, strings.TrimSpace(req.Username))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn("Login failed", "username", req.Username)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	loginAt := time.Now()
	user.LastLoginAt = &loginAt
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindByUsername returns nil without an error when no such user exists
func (s *userService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) UpdateRole(ctx context.Context, id uint, role models.UserRole, actor Actor) (*models.User, error) {
	op := s.opLogger.WithOperation(ctx, "update_role", actor.UserID)

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if !actor.IsSupervisor() {
		err := NewPermissionError(actor.UserID, id, "user", "update_role", "supervisor role required")
		op.LogResult(id, "user", err)
		return nil, err
	}

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = s.repo.User().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user.Role == role {
			return nil
		}

		previous := user.Role
		user.Role = role
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditUserRoleChanged,
			ResourceID:   user.ID,
			ResourceType: "user",
			Action:       "update_role",
			OldValue:     previous,
			NewValue:     role,
		})
	})
	op.LogResult(id, "user", err)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, id uint, active bool, actor Actor) (*models.User, error) {
	op := s.opLogger.WithOperation(ctx, "set_active", actor.UserID)

	if !actor.IsSupervisor() {
		err := NewPermissionError(actor.UserID, id, "user", "set_active", "supervisor role required")
		op.LogResult(id, "user", err)
		return nil, err
	}

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = s.repo.User().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user.IsActive == active {
			return nil
		}

		user.IsActive = active
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditUserRoleChanged,
			ResourceID:   user.ID,
			ResourceType: "user",
			Action:       "set_active",
			OldValue:     !active,
			NewValue:     active,
		})
	})
	op.LogResult(id, "user", err)
	if err != nil {
		return nil, err
	}
	return user, nil
}
