package model

import "time"

// CompanyModel 公司
type CompanyModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (CompanyModel) TableName() string {
	return "companies"
}

// CompanyUserModel 公司成员
type CompanyUserModel struct {
	CompanyID string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"primaryKey;type:varchar(64);index"`
	Role      string    `gorm:"type:varchar(32)"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (CompanyUserModel) TableName() string {
	return "company_users"
}

// MembershipModel 用户到公司的索引
type MembershipModel struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)"`
	CompanyID string    `gorm:"type:varchar(64);not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (MembershipModel) TableName() string {
	return "memberships"
}

// UserProfileModel 用户展示信息
type UserProfileModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	DisplayName string    `gorm:"type:varchar(255)"`
	AvatarURL   string    `gorm:"type:text"`
	Email       string    `gorm:"type:varchar(255)"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (UserProfileModel) TableName() string {
	return "user_profiles"
}
