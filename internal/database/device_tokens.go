package database

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

// SaveDeviceToken upserts on the token so a device that changes hands
// follows its latest owner.
func (s *Store) SaveDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"principal_id", "role", "updated_at"}),
	}).Create(token).Error
}

func (s *Store) DeviceTokens(ctx context.Context, role models.Role, principalID uint) ([]string, error) {
	var tokens []string
	err := s.conn(ctx).Model(&models.DeviceToken{}).
		Where("role = ? AND principal_id = ?", role, principalID).
		Order("token").
		Pluck("token", &tokens).Error
	return tokens, err
}
