package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

var (
	_ services.UserStore        = (*Store)(nil)
	_ services.DriverStore      = (*Store)(nil)
	_ services.RideStore        = (*Store)(nil)
	_ services.FareConfigStore  = (*Store)(nil)
	_ services.DeviceTokenStore = (*Store)(nil)
)

// Store is the postgres implementation of every store interface the
// services use.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm sentinels onto error kinds; anything else passes
// through for the service to report as internal.
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("%s", notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("%s", conflict)
	}
	return err
}
