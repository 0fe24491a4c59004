package database

import (
	"context"
	"strings"

	"github.com/chachabrian/ridehail-backend/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return translate(s.conn(ctx).Create(user).Error, "User not found", "User already exists")
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return translate(s.conn(ctx).Save(user).Error, "User not found", "User already exists")
}
