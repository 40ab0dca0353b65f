package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kevinbotlib/dashboard/internal/project"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// The main package calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// options holds the flags shared by every command.
type options struct {
	configPath  string
	libraryPath string
	verbose     bool
}

// Execute runs the dashboard CLI with ctx and returns an error if the
// command fails.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Without a subcommand it opens the
// dashboard window.
func NewRootCommand() *cobra.Command {
	opts := &options{
		configPath:  project.DefaultConfigPath(),
		libraryPath: project.DefaultLibraryPath(),
	}
	var net networkFlags

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "KevinbotLib Dashboard shows live robot telemetry on a grid of widgets",
		Long:          `The KevinbotLib Dashboard connects to the robot's Redis server, lists the published values as a tree and lets you arrange widgets bound to them on a snapping grid.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), opts, net)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("dashboard %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "settings file")
	root.PersistentFlags().StringVar(&opts.libraryPath, "library", opts.libraryPath, "named layout database")
	root.Flags().StringVar(&net.host, "host", "", "robot IPv4 address (overrides the settings file)")
	root.Flags().IntVar(&net.port, "port", 0, "robot Redis port (overrides the settings file)")

	root.AddCommand(newLayoutsCmd(opts))

	return root
}
