package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/seed"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
companies:
  - id: company-1
    name: Bistro
    users:
      - id: user-alice
        name: Alice Martin
        role: manager
      - id: user-bob
        name: Bob
lists:
  - id: list-1
    company_id: company-1
    name: Kitchen
tasks:
  - id: T1
    company_id: company-1
    list_id: list-1
    title: Opening checks
    kind: checklist
    checklist:
      - title: Fridge below 5C
      - title: Floors clean
  - id: T2
    company_id: company-1
    list_id: list-1
    title: Goods receipt
    kind: detail
    fields:
      - id: temp
        label: Core temperature
        required: true
        type: temperature
        config: {min: 0, max: 5, unit: C}
      - id: supplier
        label: Supplier
        type: text
`

// TestParse_Definitions 测试 YAML 任务转换为任务定义
func TestParse_Definitions(t *testing.T) {
	f, err := seed.Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Companies, 1)
	assert.Len(t, f.Companies[0].Users, 2)

	defs, err := f.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Len(t, defs[0].Checklist, 2)

	require.Len(t, defs[1].Fields, 2)
	temp, ok := defs[1].Fields[0].Config.(answer.TemperatureConfig)
	require.True(t, ok)
	assert.Equal(t, answer.Celsius, temp.Unit)
	require.NotNil(t, temp.Max)
	assert.Equal(t, 5.0, *temp.Max)
	assert.True(t, defs[1].Fields[0].Required)
}

// TestParse_InvalidTask 测试非法任务定义
func TestParse_InvalidTask(t *testing.T) {
	f, err := seed.Parse([]byte("tasks:\n  - id: T1\n    title: x\n    kind: weekly\n"))
	require.NoError(t, err)
	_, err = f.Definitions()
	assert.Error(t, err)

	_, err = seed.Parse([]byte("tasks: [unclosed"))
	assert.Error(t, err)
}

// TestSeeder_Apply 测试写入种子数据且可重复执行
func TestSeeder_Apply(t *testing.T) {
	db := testutil.NewTestDB(t)
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	f, err := seed.Load(path)
	require.NoError(t, err)

	membership := repository.NewMembershipRepository(db)
	catalog := service.NewCatalogService(repository.NewTaskDefinitionRepository(db), time.Minute)
	s := &seed.Seeder{
		Membership: membership,
		Profiles:   repository.NewUserProfileRepository(db),
		TaskLists:  repository.NewTaskListRepository(db),
		Catalog:    catalog,
		Logger:     logger,
	}

	for i := 0; i < 2; i++ {
		res, err := s.Apply(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, &seed.Result{Companies: 1, Users: 2, Lists: 1, Tasks: 2}, res)
	}

	m, err := membership.FindIndexed(ctx, "user-alice")
	require.NoError(t, err)
	assert.Equal(t, "company-1", m.CompanyID)

	sess := service.SessionContext{UserID: "user-alice", CompanyID: "company-1"}
	defs, err := catalog.List(ctx, sess, nil)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}
