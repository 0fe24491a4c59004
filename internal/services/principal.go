package services

import (
	"context"
	"log/slog"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/pkg/utils"
)

// Principal is the authenticated caller. It is resolved once per request
// and passed to every operation, which checks Role and ID itself.
type Principal struct {
	ID    uint        `json:"id"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

func (p Principal) Is(role models.Role) bool {
	return p.ID != 0 && p.Role == role
}

func principalFromUser(u *models.User) Principal {
	return Principal{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func principalFromDriver(d *models.Driver) Principal {
	return Principal{ID: d.ID, Role: models.RoleDriver, Name: d.Name, Email: d.Email}
}

// PrincipalResolver turns a bearer token into a Principal.
type PrincipalResolver struct {
	users   UserStore
	drivers DriverStore
	tokens  *utils.TokenManager
	log     *slog.Logger
}

func NewPrincipalResolver(users UserStore, drivers DriverStore, tokens *utils.TokenManager, log *slog.Logger) *PrincipalResolver {
	return &PrincipalResolver{users: users, drivers: drivers, tokens: tokens, log: log}
}

// Resolve validates the token and loads the principal it names. Tokens
// carry a role claim selecting the table; tokens without one are looked
// up as a rider first and then as a driver.
func (r *PrincipalResolver) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperrors.Unauthenticated("Not authorized, no token")
	}

	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		return Principal{}, apperrors.Unauthenticated("Not authorized, token failed")
	}
	id, err := claims.PrincipalID()
	if err != nil {
		return Principal{}, apperrors.Unauthenticated("Not authorized, token failed")
	}

	switch models.Role(claims.Role) {
	case models.RoleRider, models.RoleAdmin:
		p, found, err := r.lookupUser(ctx, id)
		if err != nil {
			return Principal{}, err
		}
		if !found || p.Role != models.Role(claims.Role) {
			return Principal{}, notFoundPrincipal()
		}
		return p, nil
	case models.RoleDriver:
		p, found, err := r.lookupDriver(ctx, id)
		if err != nil {
			return Principal{}, err
		}
		if !found {
			return Principal{}, notFoundPrincipal()
		}
		return p, nil
	case "":
		if p, found, err := r.lookupUser(ctx, id); err != nil || found {
			return p, err
		}
		if p, found, err := r.lookupDriver(ctx, id); err != nil || found {
			return p, err
		}
		return Principal{}, notFoundPrincipal()
	default:
		return Principal{}, apperrors.Unauthenticated("Not authorized, token failed")
	}
}

func (r *PrincipalResolver) lookupUser(ctx context.Context, id uint) (Principal, bool, error) {
	user, err := r.users.GetUser(ctx, id)
	switch {
	case err == nil:
		return principalFromUser(user), true, nil
	case apperrors.Is(err, apperrors.KindNotFound):
		return Principal{}, false, nil
	default:
		r.log.ErrorContext(ctx, "principal lookup failed", "table", "users", "id", id, "error", err)
		return Principal{}, false, apperrors.Internal("failed to resolve principal", err)
	}
}

func (r *PrincipalResolver) lookupDriver(ctx context.Context, id uint) (Principal, bool, error) {
	driver, err := r.drivers.GetDriver(ctx, id)
	switch {
	case err == nil:
		return principalFromDriver(driver), true, nil
	case apperrors.Is(err, apperrors.KindNotFound):
		return Principal{}, false, nil
	default:
		r.log.ErrorContext(ctx, "principal lookup failed", "table", "drivers", "id", id, "error", err)
		return Principal{}, false, apperrors.Internal("failed to resolve principal", err)
	}
}

func notFoundPrincipal() error {
	return apperrors.Unauthenticated("Not authorized, user/driver not found")
}

func requireRole(p Principal, role models.Role, action string) error {
	if !p.Is(role) {
		return apperrors.Forbidden("Only %ss can %s", role, action)
	}
	return nil
}
