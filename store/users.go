package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// Users is the handle on the users collection
type Users struct {
	db *gorm.DB
}

func (u *Users) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	return duplicate(u.db.WithContext(ctx).Create(user).Error)
}

func (u *Users) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *Users) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := u.db.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	users := []models.User{}
	err := q.Order("created_at asc").Find(&users).Error
	return users, err
}

// SetRole overwrites the user's role. It reports whether the user exists.
func (u *Users) SetRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	res := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	return res.RowsAffected > 0, res.Error
}

func (u *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
