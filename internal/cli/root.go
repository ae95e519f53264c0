package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/xcbuddy/internal/app"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/hcl"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	path      string
	logLevel  string
	logFormat string
}

// command carries what every subcommand needs to build an App.
type command struct {
	outW    io.Writer
	errW    io.Writer
	fs      fsutil.FileSystem
	version string
	opts    *rootOptions
}

// newApp validates the configuration and builds an App for one command.
func (c *command) newApp(cfg app.Config) (*app.App, error) {
	cfg.Path = c.opts.path
	cfg.LogLevel = c.opts.logLevel
	cfg.LogFormat = c.opts.logFormat
	cfg.Version = c.version
	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(c.outW, c.errW, config, c.fs, hcl.NewInterpreter()), nil
}

// NewRootCommand creates the root command.
func NewRootCommand(outW, errW io.Writer, fs fsutil.FileSystem, version string) *cobra.Command {
	c := &command{outW: outW, errW: errW, fs: fs, version: version, opts: &rootOptions{}}

	rootCmd := &cobra.Command{
		Use:   "xcbuddy",
		Short: "Generate Xcode projects from HCL manifests",
		Long: `xcbuddy reads Workspace.hcl, Project.hcl and Config.hcl manifests,
resolves the dependency graph between projects and targets, and writes
deterministic Xcode projects and workspaces.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(outW)
	rootCmd.SetErr(errW)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.opts.path, "path", "p", ".", "Directory holding the root manifest")
	flags.StringVar(&c.opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'")
	flags.StringVar(&c.opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'")

	rootCmd.AddCommand(newGenerateCommand(c))
	rootCmd.AddCommand(newDumpCommand(c))
	rootCmd.AddCommand(newGraphCommand(c))
	rootCmd.AddCommand(newInitCommand(c))

	return rootCmd
}

// Execute runs the command line in args. Every returned error is an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, version string) error {
	rootCmd := NewRootCommand(outW, errW, fsutil.NewOSFileSystem(), version)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// cobra reports unknown commands and arguments as plain errors.
	return usageError(fmt.Errorf("%w\nRun 'xcbuddy --help' for usage", err))
}
