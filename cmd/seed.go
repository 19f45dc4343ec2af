package cmd

import (
	"fmt"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/database"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/seed"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/service"
	"github.com/spf13/cobra"
)

// seedCmd 导入公司、成员、任务列表和任务定义
var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load companies, users and task definitions from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f, err := seed.Load(args[0])
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		s := &seed.Seeder{
			Membership: repository.NewMembershipRepository(db),
			Profiles:   repository.NewUserProfileRepository(db),
			TaskLists:  repository.NewTaskListRepository(db),
			Catalog:    service.NewCatalogService(repository.NewTaskDefinitionRepository(db), 0),
			Logger:     logger,
		}
		res, err := s.Apply(cmd.Context(), f)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies, %d users, %d lists, %d tasks\n",
			res.Companies, res.Users, res.Lists, res.Tasks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
