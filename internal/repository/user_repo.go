package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

// UserRepository defines data operations for identity records.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	// DeleteCascade removes the user together with everything they own:
	// assessments (and submissions referencing them) for teachers, own
	// submissions for students. One transaction, no orphaned rows.
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		if user.IsTeacher() {
			owned := tx.Model(&models.Assessment{}).Select("id").Where("created_by_id = ?", id)
			if err := tx.Where("assessment_id IN (?)", owned).Delete(&models.Submission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("created_by_id = ?", id).Delete(&models.Assessment{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("student_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
