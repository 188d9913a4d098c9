// accountctl 运维命令行：建用户、提升首个管理员、签发 token、回收孤儿 blob。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gin-account-service/internal/bootstrap"
	"gin-account-service/internal/core/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "accountctl",
	Short:         "accountctl manages users and stored blobs of the account service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// withApp 读配置、装配依赖，跑完统一释放
func withApp(fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Read(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, cleanup := bootstrap.NewLogger(cfg)
	defer cleanup()

	app, err := bootstrap.New(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(context.Background(), app)
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var name string
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a user (no-op if the email already exists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.Svc.Provision(ctx, args[0], name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, *u.Email, u.EffectiveRole())
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	cmd.AddCommand(create)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Administrator management"}
	cmd.AddCommand(&cobra.Command{
		Use:   "bootstrap <email>",
		Short: "Grant the admin role to an existing user, bypassing the admin check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.Svc.BootstrapAdmin(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.ID, u.EffectiveRole())
				return nil
			})
		},
	})
	return cmd
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Issue an access token for a user (created if missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.Svc.Provision(ctx, args[0], "")
				if err != nil {
					return err
				}
				tok, err := app.JWT.Issue(u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			})
		},
	}
}

func blobsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "blobs", Short: "Blob storage maintenance"}

	var grace time.Duration
	gc := &cobra.Command{
		Use:   "gc",
		Short: "Delete unreferenced blobs older than the grace period and purge used upload targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				if grace <= 0 {
					grace = time.Duration(app.Cfg.Storage.OrphanGraceMin) * time.Minute
				}
				rep, err := app.Svc.CollectOrphanBlobs(ctx, time.Now().Add(-grace))
				if err != nil {
					return err
				}
				purged, err := app.Blobs.PurgeUploadTargets(ctx)
				if err != nil {
					return err
				}
				app.Log.Info("upload targets purged", zap.Int64("count", purged))
				fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d deleted=%d failed=%d raced=%d targets_purged=%d\n",
					rep.Scanned, rep.Deleted, rep.Failed, rep.Raced, purged)
				return nil
			})
		},
	}
	gc.Flags().DurationVar(&grace, "grace", 0, "only collect blobs older than this (default storage.orphan_grace_min)")
	cmd.AddCommand(gc)
	return cmd
}

func main() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("CONFIG_PATH"), "the config file to use")
	rootCmd.AddCommand(userCmd(), adminCmd(), tokenCmd(), blobsCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "accountctl:", err)
		os.Exit(1)
	}
}
