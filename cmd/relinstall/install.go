package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/binary"
)

type installOptions struct {
	resolveOptions
	noProgress bool
}

func addInstallFlags(cmd *cobra.Command, opts *installOptions) {
	addResolveFlags(cmd, &opts.resolveOptions)
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "do not draw download progress bars")
}

func newInstallCommand(a *app) *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "install [owner/repo]",
		Short: "Download, verify and install the release binary",
		Long: `Download the release archive for this platform, verify it against the
checksum manifest and install the executable.

Nothing is written to the install directory unless verification succeeds.
If the chosen directory is not on PATH, a hint for your shell is printed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), opts, args)
		},
	}
	addInstallFlags(cmd, opts)

	return cmd
}

// runInstall is the install flow behind both the root command and
// "relinstall install".
func (a *app) runInstall(ctx context.Context, opts *installOptions, args []string) error {
	logger := a.logger()

	recipe, err := a.loadRecipe(ctx, logger, &opts.resolveOptions, args)
	if err != nil {
		return err
	}

	cfg, err := a.installerConfig(recipe, &opts.resolveOptions, logger)
	if err != nil {
		return err
	}
	if !opts.noProgress && a.interactive() {
		cfg.Progress = a.stderr
	}

	installer, err := binary.NewInstaller(cfg)
	if err != nil {
		return err
	}

	result, err := installer.Install(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "✓ %s\n", result)
	if !result.OnPath && result.Advice != "" {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, result.Advice)
	}
	return nil
}
