package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go-blog-rbac-service/internal/config"
	"go-blog-rbac-service/internal/database"
	"go-blog-rbac-service/internal/tools/common"
)

type options struct {
	envFile             string
	bootstrapAdminEmail string
	ci                  bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminEmail, "bootstrap-admin-email", "", "override bootstrap admin email")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply default roles and permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := func() ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				email := cfg.BootstrapAdminEmail
				if opts.bootstrapAdminEmail != "" {
					email = opts.bootstrapAdminEmail
				}
				report, err := database.SeedSync(db, email)
				if err != nil {
					return nil, err
				}
				details := []string{
					fmt.Sprintf("created permissions: %d", report.CreatedPermissions),
					fmt.Sprintf("created roles: %d", report.CreatedRoles),
					fmt.Sprintf("bound permissions: %d", report.BoundPermissions),
				}
				if report.Noop {
					details = append(details, "already in sync, nothing to do")
				}
				if email != "" {
					details = append(details, "bootstrap admin role assignment attempted for: "+email)
				}
				return details, nil
			}()
			report(opts, "seed apply", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := func() ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				email := cfg.BootstrapAdminEmail
				if opts.bootstrapAdminEmail != "" {
					email = opts.bootstrapAdminEmail
				}
				details := []string{
					"would ensure permissions: users:{read,create,update,delete}, posts:{read,create,update,delete}, dashboard:access, settings:manage",
					"would ensure roles: admin, moderator, user, guest (user is the signup default)",
					"would map the admin role to every permission",
				}
				if email != "" {
					details = append(details, fmt.Sprintf("would assign admin role to user if present: %s", email))
				}
				return details, nil
			}()
			report(opts, "seed dry-run", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func report(opts *options, title string, details []string, err error) {
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
		return
	}
	common.PrintResult(title, details, err)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
