// Package cmd provides the CLI commands for inventory-valuation.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inventory-valuation/internal/config"
	"inventory-valuation/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

type rootOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "inventory-valuation",
		Short: "Value finished goods inventory under absorption costing",
		Long: `inventory-valuation values closing finished goods inventory at full
absorption cost and analyses over/under absorbed overheads into expenditure
and volume variances.

Examples:
  inventory-valuation valuate
  inventory-valuation valuate --scenario q3.hcl --format markdown
  inventory-valuation valuate --budgeted-units 0
  inventory-valuation oar --budgeted-overheads 120000 --budgeted-activity-level 30000
  inventory-valuation serve --addr :8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newValuateCmd(),
		newOARCmd(),
		newAbsorptionCmd(),
		newVarianceCmd(),
		newBasesCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) path() string {
	if o.cfgFile != "" {
		return o.cfgFile
	}
	return config.DefaultPath()
}

func (o *rootOptions) initConfig() error {
	cfg, err := config.Load(o.path())
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	return logging.Initialize(cfg.Logging)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inventory-valuation version %s\n", Version)
		},
	}
}
