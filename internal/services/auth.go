package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Session is returned by every login.
type Session struct {
	Principal
	Token string `json:"token"`

	// Driver logins also carry the account status and vehicle.
	Phone   string              `json:"phone,omitempty"`
	Status  models.DriverStatus `json:"status,omitempty"`
	Vehicle *models.Vehicle     `json:"vehicle,omitempty"`
}

// AdminSeed is the account EnsureAdmin creates when missing
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

type AuthService struct {
	users   UserStore
	drivers DriverStore
	tokens  *utils.TokenManager
	log     *slog.Logger
}

func NewAuthService(users UserStore, drivers DriverStore, tokens *utils.TokenManager, log *slog.Logger) *AuthService {
	return &AuthService{users: users, drivers: drivers, tokens: tokens, log: log}
}

// RegisterRider is the public sign-up. It always creates a rider.
func (s *AuthService) RegisterRider(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Name == "":
		return nil, apperrors.InvalidInput("name is required")
	case !validEmail(in.Email):
		return nil, apperrors.InvalidInput("a valid email is required")
	case len(in.Password) < 6:
		return nil, apperrors.InvalidInput("password must be at least 6 characters")
	}

	user := &models.User{
		Name:  in.Name,
		Email: in.Email,
		Phone: strings.TrimSpace(in.Phone),
		Role:  models.RoleRider,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, s.internal(ctx, "Failed to hash password", err)
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, s.internal(ctx, "Failed to create user", err)
	}

	s.log.InfoContext(ctx, "rider registered", "userId", user.ID)
	return s.session(ctx, principalFromUser(user))
}

// Login authenticates riders and admins.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, s.internal(ctx, "Server error", err)
	}
	if user.CheckPassword(password) != nil {
		return nil, invalidCredentials()
	}
	return s.session(ctx, principalFromUser(user))
}

// DriverLogin authenticates drivers in any status; the client decides what
// a pending or suspended driver may see.
func (s *AuthService) DriverLogin(ctx context.Context, email, password string) (*Session, error) {
	driver, err := s.drivers.FindDriverByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, s.internal(ctx, "Server error", err)
	}
	if driver.CheckPassword(password) != nil {
		return nil, invalidCredentials()
	}

	sess, err := s.session(ctx, principalFromDriver(driver))
	if err != nil {
		return nil, err
	}
	vehicle := driver.Vehicle
	sess.Phone = driver.Phone
	sess.Status = driver.Status
	sess.Vehicle = &vehicle
	return sess, nil
}

// EnsureAdmin creates the seed admin if no user with its email exists.
// It is safe to call on every start.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		s.log.WarnContext(ctx, "admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	existing, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			s.log.WarnContext(ctx, "admin seed email belongs to a non-admin user", "userId", existing.ID)
		}
		return nil
	case !apperrors.Is(err, apperrors.KindNotFound):
		return err
	}

	admin := &models.User{
		Name:  seed.Name,
		Email: email,
		Phone: "0000000000",
		Role:  models.RoleAdmin,
	}
	if admin.Name == "" {
		admin.Name = "Super Admin"
	}
	if err := admin.SetPassword(seed.Password); err != nil {
		return err
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "default admin account created", "email", email)
	return nil
}

func (s *AuthService) session(ctx context.Context, p Principal) (*Session, error) {
	token, err := s.tokens.GenerateToken(p.ID, string(p.Role))
	if err != nil {
		return nil, s.internal(ctx, "Failed to generate token", err)
	}
	return &Session{Principal: p, Token: token}, nil
}

func (s *AuthService) internal(ctx context.Context, msg string, err error) error {
	s.log.ErrorContext(ctx, msg, "error", err)
	return apperrors.Internal(msg, err)
}

func invalidCredentials() error {
	return apperrors.Unauthenticated("Invalid email or password")
}
