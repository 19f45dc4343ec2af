package cmd

import (
	"fmt"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"github.com/spf13/cobra"
)

// tokenCmd 签发开发和测试用的访问令牌
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Auth.Secret == "" {
			return auth.ErrMissingSecret
		}

		companyID, _ := cmd.Flags().GetString("company")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}

		validator := auth.NewTokenValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
		token, err := validator.IssueToken(args[0], companyID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("company", "", "Company ID claim (empty: resolved from membership at request time)")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default: auth.token_ttl)")
}
