package cmd

import (
	"fmt"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/email"
	"github.com/nfrund/propdesk/internal/modules/users"
	"github.com/spf13/cobra"
)

var adminFlags struct {
	name     string
	email    string
	phone    string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Open an administrator account",
	Long: `Creates an active administrator. When --password is omitted a password is
generated and sent in the welcome email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer repos.Close(ctx)

		emailer, err := email.NewEmailService(cfg)
		if err != nil {
			return err
		}
		svc := users.NewService(repos.Users, emailer, nil, cfg.GetAppBaseURL())
		user, err := svc.Create(ctx, users.CreateInput{
			Name:     adminFlags.name,
			Email:    adminFlags.email,
			Phone:    adminFlags.phone,
			Password: adminFlags.password,
			Role:     domain.RoleAdmin,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s <%s> (%s)\n", user.Name, user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "full name")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.phone, "phone", "", "contact phone")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "initial password (generated when empty)")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}
