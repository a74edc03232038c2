package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/internal/app"
	"github.com/spf13/cobra"
)

// tokenCmd 为已有用户签发访问令牌，登录流程由上游系统负责
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for an existing user",
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetUint("user")
		role, _ := cmd.Flags().GetString("role")

		token, err := issueToken(userID, role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Uint("user", 0, "User ID")
	tokenCmd.Flags().String("role", "", "Override the user's role (admin, manager or member)")
	_ = tokenCmd.MarkFlagRequired("user")
}

func issueToken(userID uint, role string) (string, error) {
	cfg, log := loadConfig()
	defer func() { _ = log.Sync() }()

	container := app.NewContainer(cfg, log)
	if err := container.InitDatabase(); err != nil {
		return "", err
	}
	defer container.Close()

	user, err := container.EntitiesRepo.GetUser(context.Background(), userID)
	if err != nil {
		return "", err
	}

	switch role {
	case "":
	case models.RoleAdmin, models.RoleManager, models.RoleMember:
		user.Role = role
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	jwtService, err := container.GetJWTService()
	if err != nil {
		return "", err
	}
	token, expiresAt, err := jwtService.GenerateToken(user)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "Token for %s (%s) expires at %s\n", user.DisplayName(), user.Role, expiresAt.Format("2006-01-02 15:04:05"))
	return token, nil
}
