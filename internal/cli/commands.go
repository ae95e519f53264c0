package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vk/xcbuddy/internal/app"
)

func newGenerateCommand(c *command) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Xcode projects and a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cfg)
			if err != nil {
				return err
			}
			written, err := a.Generate(cmd.Context())
			if err != nil {
				return exitError(err)
			}
			for _, p := range written {
				fmt.Fprintln(c.outW, successStyle.Render("✓")+" Generated "+p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Parallelism, "parallelism", 0, "Projects rendered concurrently (0 means one per CPU)")
	cmd.Flags().StringVar(&cfg.User, "user", "", "Owner of non-shared schemes (default \"xcbuddy\")")
	return cmd
}

func newDumpCommand(c *command) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the manifest in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cfg)
			if err != nil {
				return err
			}
			if err := a.Dump(cmd.Context()); err != nil {
				return exitError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", "json", "Output format. Options: 'json' or 'yaml'")
	return cmd
}

func newGraphCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print targets in build order with their dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(app.Config{})
			if err != nil {
				return err
			}
			if err := a.Graph(cmd.Context()); err != nil {
				return exitError(err)
			}
			return nil
		},
	}
}

func newInitCommand(c *command) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter Project.hcl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(app.Config{})
			if err != nil {
				return err
			}
			path, err := a.Init(cmd.Context(), name)
			if err != nil {
				return exitError(err)
			}
			fmt.Fprintln(c.outW, successStyle.Render("✓")+" Created "+path)
			fmt.Fprintln(c.outW, subtleStyle.Render("Run 'xcbuddy generate' to create the Xcode project."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: the directory name)")
	return cmd
}
