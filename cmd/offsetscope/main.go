package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "offsetscope",
		Short:        "Carbon offset registry client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile the account's ledger history into a report",
		RunE:  runReport,
	}
	addReportFlags(reportCmd)
	root.AddCommand(reportCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the report on a fixed interval",
		RunE:  runWatch,
	}
	addReportFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 30*time.Second, "refresh interval")
	root.AddCommand(watchCmd)

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Fetch the project catalog (cached fallback when offline)",
		RunE:  runProjects,
	}
	projectsCmd.Flags().String("rpc", "", "ledger RPC URL")
	projectsCmd.Flags().String("registry", "", "registry contract address")
	projectsCmd.Flags().String("cache", "./data/projects.json", "catalog cache path")
	projectsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for archiving")
	projectsCmd.Flags().Int("concurrency", 8, "concurrent project reads")
	projectsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(projectsCmd)

	contributeCmd := &cobra.Command{
		Use:   "contribute",
		Short: "Contribute tokens toward a project's funding",
		RunE:  runContribute,
	}
	addTransactFlags(contributeCmd)
	contributeCmd.Flags().Uint64("project", 0, "project id")
	contributeCmd.Flags().Uint64("amount", 0, "token amount to contribute")
	root.AddCommand(contributeCmd)

	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy compensation tokens",
		RunE:  runBuy,
	}
	addTransactFlags(buyCmd)
	buyCmd.Flags().Uint64("amount", 0, "token amount to buy")
	root.AddCommand(buyCmd)

	createProjectCmd := &cobra.Command{
		Use:   "create-project",
		Short: "Register a new offset project",
		RunE:  runCreateProject,
	}
	addTransactFlags(createProjectCmd)
	createProjectCmd.Flags().String("name", "", "project name")
	createProjectCmd.Flags().String("description", "", "project description")
	createProjectCmd.Flags().String("location", "Unknown", "project location")
	createProjectCmd.Flags().Uint64("required-tokens", 0, "tokens required to fund the project")
	createProjectCmd.Flags().Uint64("co2-reduction", 0, "CO2 reduction in kg (defaults to required-tokens x 100)")
	root.AddCommand(createProjectCmd)

	footprintCmd := &cobra.Command{
		Use:   "footprint",
		Short: "Estimate emissions from self-reported consumption",
		RunE:  runFootprint,
	}
	addTransactFlags(footprintCmd)
	footprintCmd.Flags().Float64("electricity", 0, "electricity use in kWh")
	footprintCmd.Flags().Float64("car-km", 0, "car travel in km")
	footprintCmd.Flags().Float64("flights", 0, "number of flights")
	footprintCmd.Flags().Float64("meat", 0, "meat consumption in kg per week")
	footprintCmd.Flags().Bool("record", false, "record the emissions on the ledger")
	root.AddCommand(footprintCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "ledger RPC URL")
	cmd.Flags().String("registry", "", "registry contract address")
	cmd.Flags().String("account", "", "account address to report on")
	cmd.Flags().String("out", "", "optional JSONL archive path")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for archiving")
	cmd.Flags().Int("concurrency", 8, "concurrent block/project reads")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for reads")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addTransactFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "ledger RPC URL")
	cmd.Flags().String("registry", "", "registry contract address")
	cmd.Flags().String("private-key", "", "hex private key of the signing account")
	cmd.Flags().Duration("confirm-timeout", 2*time.Minute, "inclusion wait timeout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
