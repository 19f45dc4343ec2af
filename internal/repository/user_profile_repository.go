package repository

import (
	"context"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
)

// UserProfileRepository 用户资料仓储接口
type UserProfileRepository interface {
	Save(ctx context.Context, profile *model.UserProfileModel) error
	FindByID(ctx context.Context, id string) (*model.UserProfileModel, error)
}

type userProfileRepository struct {
	db *gorm.DB
}

// NewUserProfileRepository 创建用户资料仓储
func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) Save(ctx context.Context, profile *model.UserProfileModel) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userProfileRepository) FindByID(ctx context.Context, id string) (*model.UserProfileModel, error) {
	var p model.UserProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
