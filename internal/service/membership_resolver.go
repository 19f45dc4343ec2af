package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MembershipResolver 查找用户所属公司
// 调用方不关心具体使用了哪种查找策略
type MembershipResolver interface {
	LookupByUserID(ctx context.Context, userID string) (string, error)
}

// IndexedMembershipResolver 通过 memberships 索引表查找
type IndexedMembershipResolver struct {
	repo repository.MembershipRepository
}

// NewIndexedMembershipResolver 创建索引查找器
func NewIndexedMembershipResolver(repo repository.MembershipRepository) *IndexedMembershipResolver {
	return &IndexedMembershipResolver{repo: repo}
}

func (r *IndexedMembershipResolver) LookupByUserID(ctx context.Context, userID string) (string, error) {
	m, err := r.repo.FindIndexed(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoMembership
		}
		return "", fmt.Errorf("membership index lookup failed: %w", err)
	}
	return m.CompanyID, nil
}

// ScanMembershipResolver 逐个公司查找成员
type ScanMembershipResolver struct {
	repo repository.MembershipRepository
}

// NewScanMembershipResolver 创建扫描查找器
func NewScanMembershipResolver(repo repository.MembershipRepository) *ScanMembershipResolver {
	return &ScanMembershipResolver{repo: repo}
}

func (r *ScanMembershipResolver) LookupByUserID(ctx context.Context, userID string) (string, error) {
	companyIDs, err := r.repo.ListCompanyIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list companies: %w", err)
	}
	for _, companyID := range companyIDs {
		_, err := r.repo.FindCompanyUser(ctx, companyID, userID)
		if err == nil {
			return companyID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to look up user in company %s: %w", companyID, err)
		}
	}
	return "", ErrNoMembership
}

// FallbackMembershipResolver 先查索引,未命中时扫描并回填索引
type FallbackMembershipResolver struct {
	index  *IndexedMembershipResolver
	scan   *ScanMembershipResolver
	repo   repository.MembershipRepository
	logger logrus.FieldLogger
}

// NewFallbackMembershipResolver 创建组合查找器
func NewFallbackMembershipResolver(repo repository.MembershipRepository, logger logrus.FieldLogger) *FallbackMembershipResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FallbackMembershipResolver{
		index:  NewIndexedMembershipResolver(repo),
		scan:   NewScanMembershipResolver(repo),
		repo:   repo,
		logger: logger.WithField("component", "membership_resolver"),
	}
}

func (r *FallbackMembershipResolver) LookupByUserID(ctx context.Context, userID string) (string, error) {
	companyID, err := r.index.LookupByUserID(ctx, userID)
	if err == nil {
		return companyID, nil
	}
	if !errors.Is(err, ErrNoMembership) {
		r.logger.WithError(err).WithField("user_id", userID).Warn("membership index unavailable, scanning companies")
	}

	companyID, err = r.scan.LookupByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := r.repo.SaveIndex(ctx, userID, companyID); err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Warn("failed to back-fill membership index")
	}
	return companyID, nil
}
