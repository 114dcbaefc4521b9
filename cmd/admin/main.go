// cmd/admin/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	usecase "flowify/internal/application/usecase"
	appcfg "flowify/internal/infra/config"
	"flowify/internal/infra/logging"
	"flowify/internal/platform/di"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "flowify-admin",
		Short:   "FlowiFy operational commands",
		Version: Version,
	}

	rootCmd.AddCommand(seedPlansCmd())
	rootCmd.AddCommand(sweepAccessCmd())
	rootCmd.AddCommand(convertCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer builds the DI container for a single command run.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *di.Container) error) error {
	cfg := appcfg.Load()
	logging.Init(cfg.LogLevel, false)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := di.NewContainerWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func seedPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "Upsert the default plan catalog into Firestore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				ids, err := c.PlanUC.SeedDefaults(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("seeded plans: %s\n", strings.Join(ids, ", "))
				return nil
			})
		},
	}
}

func sweepAccessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-access",
		Short: "Deactivate users whose access has expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				res, err := c.AccessSweepUC.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("deactivated: %d\n", len(res.Deactivated))
				for _, uid := range res.Failed {
					log.Warn().Str("uid", uid).Msg("[admin] deactivate failed")
				}
				if len(res.Failed) > 0 {
					return fmt.Errorf("%d users could not be deactivated", len(res.Failed))
				}
				return nil
			})
		},
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [uid] [schedulingId]",
		Short: "Convert a tenant's scheduling into a paid sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				actor := &usecase.Actor{UID: strings.TrimSpace(args[0])}
				sale, err := c.ConversionUC.ConvertByID(ctx, actor, args[1])
				if err != nil {
					return err
				}
				fmt.Printf("sale %s created: total=%.2f commission=%.2f\n", sale.ID, sale.TotalValue, sale.Commission)
				return nil
			})
		},
	}
}
