package repository

import (
	"errors"

	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new repository for users
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts a new user
func (r *UserRepository) CreateUser(user *models.UserModel) error {
	return r.DB.Create(user).Error
}

// GetUserByID gets a user by internal id
func (r *UserRepository) GetUserByID(id uint) (*models.UserModel, error) {
	var user models.UserModel
	err := r.DB.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByWcaID gets a user by their public WCA id. Returns
// (nil, nil) when no such user exists.
func (r *UserRepository) GetUserByWcaID(wcaID string) (*models.UserModel, error) {
	var user models.UserModel
	err := r.DB.Where("wca_id = ?", wcaID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
