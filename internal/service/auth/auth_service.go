package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/tripoffice/config"
	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/repository"
	"github.com/Domenick1991/tripoffice/internal/session"
	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, input RegisterInput) (*domain.AdminUser, error)
	ListAdmins(ctx context.Context) ([]domain.AdminUser, error)
	UpdateAdmin(ctx context.Context, id string, input UpdateAdminInput) (*domain.AdminUser, error)
	DeleteAdmin(ctx context.Context, id string) error
}

type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	Identity  domain.Identity
}

type RegisterInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
}

// UpdateAdminInput is a partial update; nil fields are left alone.
type UpdateAdminInput struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Role           *string `json:"role"`
	IsActive       *bool   `json:"isActive"`
	ProfilePicture *string `json:"profilePicture"`
	Bio            *string `json:"bio"`
	PhoneNumber    *string `json:"phoneNumber"`
	Address        *string `json:"address"`
}

type AuthService struct {
	admins   repository.AdminRepository
	sessions session.Store
	fallback config.AuthConfig
	ttl      time.Duration
	cost     int
	now      func() time.Time
	compare  func(hash, password []byte) error

	// dummyHash is compared against when the email is unknown so both paths pay for bcrypt.
	dummyHash []byte
}

type AuthServiceOption func(*AuthService)

func WithFallbackAccount(cfg config.AuthConfig) AuthServiceOption {
	return func(s *AuthService) {
		s.fallback = cfg
	}
}

func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.cost = cost
	}
}

func NewAuthService(admins repository.AdminRepository, sessions session.Store, ttl time.Duration, opts ...AuthServiceOption) *AuthService {
	service := &AuthService{
		admins:   admins,
		sessions: sessions,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		compare:  bcrypt.CompareHashAndPassword,
	}
	for _, opt := range opts {
		opt(service)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("tripoffice-unknown-account"), service.cost)
	if err != nil {
		log.Printf("WARNING: failed to prepare dummy password hash: %v", err)
	}
	service.dummyHash = hash
	return service
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	identity, err := s.verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(ctx, identity, s.ttl)
	if err != nil {
		return nil, apperror.Wrap(err, "issue session")
	}
	return &LoginResult{Token: token, ExpiresIn: s.ttl, Identity: identity}, nil
}

// verify checks stored admins first, then the configured fallback account.
func (s *AuthService) verify(ctx context.Context, email, password string) (domain.Identity, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if s.compare([]byte(admin.PasswordHash), []byte(password)) != nil {
			return domain.Identity{}, apperror.Unauthenticated("Invalid credentials")
		}
		if !admin.IsActive {
			return domain.Identity{}, apperror.Unauthenticated("Account is disabled")
		}
		if err := s.admins.TouchLastLogin(ctx, admin.ID, s.now()); err != nil {
			log.Printf("WARNING: failed to record last login for admin %s: %v", admin.ID, err)
		}
		return domain.Identity{AdminID: admin.ID, Username: admin.Username, Email: admin.Email, Role: admin.Role}, nil
	case errors.Is(err, repository.ErrNotFound):
		_ = s.compare(s.dummyHash, []byte(password))
	default:
		return domain.Identity{}, apperror.Wrap(err, "load admin")
	}

	if s.matchesFallback(email, password) {
		role, ok := domain.ParseRole(s.fallback.FallbackRole)
		if !ok {
			role = domain.RoleSuperAdmin
		}
		username := s.fallback.FallbackUsername
		if username == "" {
			username = email
		}
		return domain.Identity{Username: username, Email: email, Role: role}, nil
	}
	return domain.Identity{}, apperror.Unauthenticated("Invalid credentials")
}

// Refresh reloads a stored admin behind a session so role changes and deactivation
// take effect on the next request. The fallback account has no AdminID and is returned as is.
func (s *AuthService) Refresh(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	if identity.AdminID == "" {
		return identity, nil
	}
	admin, err := s.admins.GetByID(ctx, identity.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Identity{}, apperror.Unauthenticated("Unauthorized")
		}
		return domain.Identity{}, apperror.Wrap(err, "load admin")
	}
	if !admin.IsActive {
		return domain.Identity{}, apperror.Unauthenticated("Account is disabled")
	}
	return domain.Identity{AdminID: admin.ID, Username: admin.Username, Email: admin.Email, Role: admin.Role}, nil
}

func (s *AuthService) matchesFallback(email, password string) bool {
	if s.fallback.FallbackEmail == "" || s.fallback.FallbackPassword == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(s.fallback.FallbackEmail)), []byte(email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(s.fallback.FallbackPassword), []byte(password)) == 1
	return emailOK && passOK
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperror.Wrap(err, "revoke session")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.AdminUser, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, apperror.Validation("Username, email, and password are required")
	}

	role := domain.RoleEmployee
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, invalidRole()
		}
		role = parsed
	}

	existing, err := s.admins.FindByEmailOrUsername(ctx, email, username)
	if err == nil {
		field := "username"
		if existing.Email == email {
			field = "email"
		}
		return nil, accountExists(field)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Wrap(err, "check existing admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, apperror.Wrap(err, "hash password")
	}

	admin := &domain.AdminUser{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		IsActive:       true,
		ProfilePicture: input.ProfilePicture,
		Bio:            input.Bio,
		PhoneNumber:    input.PhoneNumber,
		Address:        input.Address,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, mapWriteError(err, "create admin")
	}
	return admin, nil
}

func (s *AuthService) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "list admins")
	}
	return admins, nil
}

func (s *AuthService) UpdateAdmin(ctx context.Context, id string, input UpdateAdminInput) (*domain.AdminUser, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Admin not found")
		}
		return nil, apperror.Wrap(err, "load admin")
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperror.Validation("Username cannot be empty")
		}
		admin.Username = username
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, apperror.Validation("Email cannot be empty")
		}
		admin.Email = email
	}
	if input.Username != nil || input.Email != nil {
		existing, err := s.admins.FindByEmailOrUsername(ctx, admin.Email, admin.Username)
		switch {
		case err == nil && existing.ID != admin.ID:
			field := "username"
			if existing.Email == admin.Email {
				field = "email"
			}
			return nil, accountExists(field)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, apperror.Wrap(err, "check existing admin")
		}
	}
	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, invalidRole()
		}
		admin.Role = role
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperror.Validation("Password cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
		if err != nil {
			return nil, apperror.Wrap(err, "hash password")
		}
		admin.PasswordHash = string(hash)
	}
	if input.IsActive != nil {
		admin.IsActive = *input.IsActive
	}
	if input.ProfilePicture != nil {
		admin.ProfilePicture = *input.ProfilePicture
	}
	if input.Bio != nil {
		admin.Bio = *input.Bio
	}
	if input.PhoneNumber != nil {
		admin.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		admin.Address = *input.Address
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, mapWriteError(err, "update admin")
	}
	return admin, nil
}

func (s *AuthService) DeleteAdmin(ctx context.Context, id string) error {
	if err := s.admins.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Admin not found")
		}
		return apperror.Wrap(err, "delete admin")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidRole() error {
	names := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		names[i] = string(r)
	}
	return apperror.Validation("Invalid role. Allowed: %s", strings.Join(names, ", "))
}

func accountExists(field string) error {
	return apperror.Conflict("An account with this %s already exists", field)
}

func mapWriteError(err error, op string) error {
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		return accountExists(dup.Field)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("Admin not found")
	}
	return apperror.Wrap(err, fmt.Sprintf("%s failed", op))
}

var _ AuthUseCase = (*AuthService)(nil)
