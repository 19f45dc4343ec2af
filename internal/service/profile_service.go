package service

import (
	"context"
	"strings"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/sirupsen/logrus"
)

// UnknownUserName 无法获取用户资料时的占位名称
const UnknownUserName = "Unknown User"

// Profile 用户展示信息
type Profile struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProfileService 用户资料服务
type ProfileService interface {
	// Display 返回用户展示信息,任何失败都降级为占位资料
	Display(ctx context.Context, userID string) Profile
}

type profileService struct {
	repo   repository.UserProfileRepository
	logger logrus.FieldLogger
}

// NewProfileService 创建用户资料服务
func NewProfileService(repo repository.UserProfileRepository, logger logrus.FieldLogger) ProfileService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &profileService{repo: repo, logger: logger.WithField("component", "profile_service")}
}

func (s *profileService) Display(ctx context.Context, userID string) Profile {
	placeholder := Profile{UserID: userID, Name: UnknownUserName}
	if userID == "" {
		return placeholder
	}

	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Debug("profile lookup failed")
		return placeholder
	}

	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = UnknownUserName
	}
	return Profile{UserID: userID, Name: name, AvatarURL: p.AvatarURL}
}
