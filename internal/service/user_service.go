package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/auth"
	"github.com/gestar-hq/gestar-service/internal/cache"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/repository"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// UserService owns the user directory.
type UserService struct {
	store      repository.Store
	cache      cache.ViewCache
	bcryptCost int
	now        func() time.Time
}

// UserDependencies bundles collaborators for the directory.
type UserDependencies struct {
	Store      repository.Store
	Cache      cache.ViewCache
	BcryptCost int
	Now        func() time.Time
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	viewCache := deps.Cache
	if viewCache == nil {
		viewCache = cache.NoopViewCache{}
	}
	return &UserService{store: deps.Store, cache: viewCache, bcryptCost: deps.BcryptCost, now: now}
}

// UserCreateInput describes user creation payload.
type UserCreateInput struct {
	Name     string
	Email    string
	Role     domain.UserRole
	Area     string
	Password *string
}

// ListUsers returns user records ordered by display name.
func (s *UserService) ListUsers(ctx context.Context, onlyActive bool) ([]domain.User, error) {
	key := fmt.Sprintf("%sactive:%t", cache.PrefixUsers, onlyActive)
	var cached []domain.User
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	users, err := s.store.Users().List(ctx, onlyActive)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache.Set(ctx, key, users)
	return users, nil
}

// FindByDisplayName resolves a user by display name, also accepting the
// legacy "Name <email>" composite form carried by references imported from
// the historical flat list.
func (s *UserService) FindByDisplayName(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	user, err := s.store.Users().GetByName(ctx, name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStorageError(err)
	}

	plainName, email, ok := splitLegacyComposite(name)
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"name": name})
	}
	user, err = s.store.Users().GetByNameAndEmail(ctx, plainName, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"name": name})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return user, nil
}

// GetUser loads one user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStorage(err, "user")
	}
	return user, nil
}

// CreateUser inserts a new active user record.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("nombre_completo required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleSolicitante
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("unknown rol", map[string]any{"rol": string(role)})
	}

	user := &domain.User{
		Name:   name,
		Email:  strings.TrimSpace(input.Email),
		Role:   role,
		Area:   input.Area,
		Active: true,
	}
	if input.Password != nil && *input.Password != "" {
		hashed, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = &hashed
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache.Invalidate(ctx, cache.PrefixUsers)
	return user, nil
}

// UpdateUser applies a partial update restricted to the allow-listed fields
// {rol, area, email, activo}. An empty update set is a silent no-op.
func (s *UserService) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) error {
	if update.Empty() {
		return nil
	}
	if update.Role != nil && !update.Role.IsValid() {
		return apperrors.NewValidationError("unknown rol", map[string]any{"rol": string(*update.Role)})
	}
	if err := s.store.Users().Update(ctx, id, update, s.now()); err != nil {
		return notFoundOrStorage(err, "user")
	}
	s.cache.Invalidate(ctx, cache.PrefixUsers)
	return nil
}

// Authenticate resolves a display name (or legacy composite) to an active
// user and, when the record carries a credential, verifies the password.
// Records imported from the historical flat list have no credential and keep
// the original tool's trust model.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	user, err := s.FindByDisplayName(ctx, name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("user deactivated")
	}
	if user.PasswordHash != nil {
		if err := auth.ComparePassword(*user.PasswordHash, password); err != nil {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
	}
	return user, nil
}

// splitLegacyComposite parses "Name <email>" into its parts.
func splitLegacyComposite(value string) (name, email string, ok bool) {
	open := strings.LastIndex(value, "<")
	if open <= 0 || !strings.HasSuffix(value, ">") {
		return "", "", false
	}
	name = strings.TrimSpace(value[:open])
	email = strings.TrimSpace(value[open+1 : len(value)-1])
	if name == "" || email == "" {
		return "", "", false
	}
	return name, email, true
}
