package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type UserServiceConfig struct {
	JWTSecret        string
	JWTTTL           time.Duration
	AllowAdminSignup bool
	IdentityCacheTTL time.Duration
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	cache    ports.CachePort // optional
	config   UserServiceConfig
}

func NewUserService(userRepo repositories.UserRepository, taskRepo repositories.TaskRepository, cache ports.CachePort, config UserServiceConfig) services.UserService {
	if config.JWTTTL <= 0 {
		config.JWTTTL = 7 * 24 * time.Hour
	}
	if config.IdentityCacheTTL <= 0 {
		config.IdentityCacheTTL = 5 * time.Minute
	}
	return &UserServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		cache:    cache,
		config:   config,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (string, *models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return "", nil, fmt.Errorf("%w: invalid role %q", services.ErrValidation, role)
	}
	if role == models.RoleAdmin && !s.config.AllowAdminSignup {
		logger.WarnContext(ctx, "Admin self-registration rejected", "email", req.Email)
		return "", nil, fmt.Errorf("%w: admin self-registration is disabled", services.ErrForbidden)
	}

	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		logger.WarnContext(ctx, "Email already exists", "email", req.Email)
		return "", nil, fmt.Errorf("%w: email already registered", services.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return "", nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return "", nil, fmt.Errorf("%w: email already registered", services.ErrValidation)
		}
		logger.ErrorContext(ctx, "Failed to create user in database", "error", err)
		return "", nil, err
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User created successfully", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return token, user, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			return "", nil, err
		}
		logger.WarnContext(ctx, "Login failed - email not found", "email", req.Email)
		return "", nil, fmt.Errorf("%w: invalid email or password", services.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnContext(ctx, "Login failed - invalid password", "user_id", user.ID)
		return "", nil, fmt.Errorf("%w: invalid email or password", services.ErrUnauthenticated)
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User logged in successfully", "user_id", user.ID)
	return token, user, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	users, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list users", "offset", offset, "limit", limit, "error", err)
		return nil, 0, err
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to count users", "error", err)
		return nil, 0, err
	}

	return users, count, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, actor *services.Actor, userID uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	if actor == nil {
		return nil, services.ErrUnauthenticated
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot modify another user", services.ErrForbidden)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := &models.User{}

	if name := strings.TrimSpace(req.Name); name != "" {
		updates.Name = name
	}

	if req.Role != "" && req.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: only admins can change roles", services.ErrForbidden)
		}
		if !models.IsValidRole(req.Role) {
			return nil, fmt.Errorf("%w: invalid role %q", services.ErrValidation, req.Role)
		}
		updates.Role = req.Role
	}

	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil && existing.ID != userID {
			return nil, fmt.Errorf("%w: email already registered", services.ErrValidation)
		}
		updates.Email = req.Email
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to hash password", "error", err)
			return nil, err
		}
		updates.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, fmt.Errorf("%w: email already registered", services.ErrValidation)
		case errors.Is(err, repositories.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to update user", "user_id", userID, "error", err)
		return nil, err
	}
	s.invalidateIdentity(ctx, userID)

	logger.InfoContext(ctx, "User updated", "user_id", userID, "by", actor.ID)
	return s.GetUser(ctx, userID)
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor *services.Actor, userID uuid.UUID) error {
	if actor == nil {
		return services.ErrUnauthenticated
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return fmt.Errorf("%w: cannot delete another user", services.ErrForbidden)
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	// ห้ามลบ user ที่ยังถูกอ้างอิงจาก task
	referenced, err := s.taskRepo.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if referenced > 0 {
		logger.WarnContext(ctx, "User still referenced by tasks", "user_id", userID, "tasks", referenced)
		return fmt.Errorf("%w: user is assigned to or created %d task(s)", services.ErrConflict, referenced)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", services.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to delete user", "user_id", userID, "error", err)
		return err
	}
	s.invalidateIdentity(ctx, userID)

	logger.InfoContext(ctx, "User deleted", "user_id", userID, "by", actor.ID)
	return nil
}

func (s *UserServiceImpl) GenerateJWT(user *models.User) (string, error) {
	return utils.GenerateToken(user.ID, user.Name, user.Email, user.Role, s.config.JWTSecret, s.config.JWTTTL)
}

// ResolveIdentity ตรวจ token แล้ว resolve เป็น user ที่ยังมีอยู่จริง
func (s *UserServiceImpl) ResolveIdentity(ctx context.Context, token string) (*services.Actor, error) {
	userID, _, err := utils.ParseToken(token, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrUnauthenticated, err)
	}

	key := identityCacheKey(userID)
	if s.cache != nil {
		var cached services.Actor
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil && cached.ID == userID {
			return &cached, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", services.ErrUnauthenticated)
		}
		return nil, err
	}

	actor := services.ActorFromUser(user)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, actor, s.config.IdentityCacheTTL); err != nil {
			logger.WarnContext(ctx, "Failed to cache identity", "user_id", userID, "error", err)
		}
	}
	return actor, nil
}

func (s *UserServiceImpl) invalidateIdentity(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, identityCacheKey(userID)); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate cached identity", "user_id", userID, "error", err)
	}
}

func identityCacheKey(userID uuid.UUID) string {
	return "identity:" + userID.String()
}
