package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/scaffold-go/internal/app"
	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/utils"
	"github.com/quantmind-br/scaffold-go/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	// Dependencies for testing
	newOrchestrator = app.NewOrchestrator
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

var rootCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Create a new React app based on a template",
	Long: `Scaffold creates a ready-to-run React project from a fixed template.

It downloads the template archive, unpacks it into a new directory and
initializes a git repository there.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var createCmd = &cobra.Command{
	Use:   "create <app-name>",
	Short: "Create a new React app",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFilePath()
		if cfgFile != "" {
			path = utils.ExpandPath(cfgFile)
		}
		force, _ := cmd.Flags().GetBool("force")

		if err := config.Save(config.Default(), path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return config.Encode(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.scaffold/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(utils.ExpandPath(cfgFile))
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: verbose,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator, err := newOrchestrator(app.OrchestratorOptions{
		Config:   cfg,
		Template: domain.TemplateSource{URL: cfg.Template.URL},
		Verbose:  verbose,
		Reporter: utils.NewReporter(cfg.Progress.Style, cmd.ErrOrStderr(), logger),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	result := orchestrator.Run(ctx, args[0])
	if !result.Succeeded() {
		if ctx.Err() != nil {
			logger.Warn().Msg("Interrupted")
		}
		return result.Err
	}

	printNextSteps(cmd.OutOrStdout(), result.Request.AppName, orchestrator.PackageManager())
	return nil
}

func printNextSteps(w io.Writer, appName, packageManager string) {
	fmt.Fprint(w, app.NextSteps(appName, packageManager))
}

// formatError renders err as the single line shown to the user
func formatError(err error) string {
	if stage, ok := domain.StageOf(err); ok {
		return fmt.Sprintf("Error: %s: %v", stage, err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// execute runs the root command with args and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}
	return 0
}
