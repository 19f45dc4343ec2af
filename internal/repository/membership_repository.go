package repository

import (
	"context"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository 公司成员关系仓储接口
type MembershipRepository interface {
	// FindIndexed 从 memberships 索引表查找用户所属公司
	FindIndexed(ctx context.Context, userID string) (*model.MembershipModel, error)
	// SaveIndex 写入或覆盖索引
	SaveIndex(ctx context.Context, userID, companyID string) error
	// ListCompanyIDs 列出所有公司 ID
	ListCompanyIDs(ctx context.Context) ([]string, error)
	// FindCompanyUser 在指定公司的成员中查找用户
	FindCompanyUser(ctx context.Context, companyID, userID string) (*model.CompanyUserModel, error)
	// AddCompanyUser 添加公司成员
	AddCompanyUser(ctx context.Context, user *model.CompanyUserModel) error
	// SaveCompany 写入或覆盖公司
	SaveCompany(ctx context.Context, company *model.CompanyModel) error
}

// membershipRepository 公司成员关系仓储实现
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建公司成员关系仓储
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// FindIndexed 从索引表查找
func (r *membershipRepository) FindIndexed(ctx context.Context, userID string) (*model.MembershipModel, error) {
	var m model.MembershipModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveIndex 写入索引
func (r *membershipRepository) SaveIndex(ctx context.Context, userID, companyID string) error {
	m := &model.MembershipModel{UserID: userID, CompanyID: companyID, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_id", "updated_at"}),
	}).Create(m).Error
}

// ListCompanyIDs 列出所有公司 ID
func (r *membershipRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.CompanyModel{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// FindCompanyUser 在公司成员中查找用户
func (r *membershipRepository) FindCompanyUser(ctx context.Context, companyID, userID string) (*model.CompanyUserModel, error) {
	var u model.CompanyUserModel
	if err := r.db.WithContext(ctx).Where("company_id = ? AND user_id = ?", companyID, userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AddCompanyUser 添加公司成员
func (r *membershipRepository) AddCompanyUser(ctx context.Context, user *model.CompanyUserModel) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SaveCompany 写入或覆盖公司
func (r *membershipRepository) SaveCompany(ctx context.Context, company *model.CompanyModel) error {
	return r.db.WithContext(ctx).Save(company).Error
}
