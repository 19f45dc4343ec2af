package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// File 种子数据文件
type File struct {
	Companies []Company                `yaml:"companies"`
	Lists     []List                   `yaml:"lists"`
	Tasks     []map[string]interface{} `yaml:"tasks"` // 按任务定义的 JSON 结构解析
}

// Company 公司及其成员
type Company struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Users []User `yaml:"users"`
}

// User 公司成员及展示信息
type User struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Avatar string `yaml:"avatar"`
	Role   string `yaml:"role"`
}

// List 任务列表
type List struct {
	ID        string `yaml:"id"`
	CompanyID string `yaml:"company_id"`
	Name      string `yaml:"name"`
}

// Result 导入统计
type Result struct {
	Companies int
	Users     int
	Lists     int
	Tasks     int
}

// Load 读取种子文件
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse 解析种子数据
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Definitions 将任务转换为任务定义,字段配置沿用 JSON 解码规则
func (f *File) Definitions() ([]answer.TaskDefinition, error) {
	defs := make([]answer.TaskDefinition, 0, len(f.Tasks))
	for i, raw := range f.Tasks {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		var def answer.TaskDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Seeder 写入种子数据,重复执行结果相同
type Seeder struct {
	Membership repository.MembershipRepository
	Profiles   repository.UserProfileRepository
	TaskLists  repository.TaskListRepository
	Catalog    service.CatalogService
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// Apply 按 公司 > 成员 > 列表 > 任务 的顺序写入
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	defs, err := f.Definitions()
	if err != nil {
		return nil, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	res := &Result{}
	for _, c := range f.Companies {
		if err := s.Membership.SaveCompany(ctx, &model.CompanyModel{ID: c.ID, Name: c.Name, CreatedAt: now()}); err != nil {
			return nil, fmt.Errorf("company %s: %w", c.ID, err)
		}
		res.Companies++

		for _, u := range c.Users {
			if err := s.seedUser(ctx, c.ID, u, now()); err != nil {
				return nil, fmt.Errorf("user %s: %w", u.ID, err)
			}
			res.Users++
		}
	}

	for _, l := range f.Lists {
		at := now()
		if err := s.TaskLists.Save(ctx, &model.TaskListModel{
			ID: l.ID, CompanyID: l.CompanyID, Name: l.Name, CreatedAt: at, UpdatedAt: at,
		}); err != nil {
			return nil, fmt.Errorf("list %s: %w", l.ID, err)
		}
		res.Lists++
	}

	for _, def := range defs {
		if err := s.Catalog.Save(ctx, def); err != nil {
			return nil, fmt.Errorf("task %s: %w", def.ID, err)
		}
		res.Tasks++
	}

	logger.WithFields(logrus.Fields{
		"companies": res.Companies,
		"users":     res.Users,
		"lists":     res.Lists,
		"tasks":     res.Tasks,
	}).Info("seed data applied")
	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, companyID string, u User, at time.Time) error {
	role := u.Role
	if role == "" {
		role = "member"
	}
	if err := s.Membership.AddCompanyUser(ctx, &model.CompanyUserModel{
		CompanyID: companyID, UserID: u.ID, Role: role, CreatedAt: at,
	}); err != nil {
		return err
	}
	if err := s.Membership.SaveIndex(ctx, u.ID, companyID); err != nil {
		return err
	}
	return s.Profiles.Save(ctx, &model.UserProfileModel{
		ID: u.ID, DisplayName: u.Name, AvatarURL: u.Avatar, Email: u.Email, UpdatedAt: at,
	})
}
