package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/binary"
)

func newPlanCommand(a *app) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "plan [owner/repo]",
		Short: "Show what install would do without downloading anything",
		Long: `Resolve the platform, checksum tool, release tag, install directory and
artifact URLs, then print them. The release index is queried when no tag is
pinned; nothing is downloaded and nothing is written.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.Context(), opts, args)
		},
	}
	addResolveFlags(cmd, opts)

	return cmd
}

func (a *app) runPlan(ctx context.Context, opts *resolveOptions, args []string) error {
	logger := a.logger()

	recipe, err := a.loadRecipe(ctx, logger, opts, args)
	if err != nil {
		return err
	}

	cfg, err := a.installerConfig(recipe, opts, logger)
	if err != nil {
		return err
	}

	installer, err := binary.NewInstaller(cfg)
	if err != nil {
		return err
	}

	plan, err := installer.Plan(ctx)
	if err != nil {
		return err
	}

	printPlan(a.stdout, plan, len(cfg.Keyring) > 0)
	return nil
}

func printPlan(w io.Writer, plan *binary.Plan, signed bool) {
	verification := binary.VerificationSHA256
	if signed {
		verification = binary.VerificationSignedSHA256
	}

	fmt.Fprintf(w, "Package:       %s\n", plan.Package)
	fmt.Fprintf(w, "Release:       %s\n", plan.Artifact.Tag)
	fmt.Fprintf(w, "Platform:      %s\n", plan.Platform)
	fmt.Fprintf(w, "Archive:       %s\n", plan.Artifact.ArchiveURL)
	fmt.Fprintf(w, "Manifest:      %s\n", plan.Artifact.ChecksumURL)
	if signed {
		fmt.Fprintf(w, "Signature:     %s\n", plan.Artifact.SignatureURL)
	}
	fmt.Fprintf(w, "Checksum tool: %s\n", plan.Tool)
	fmt.Fprintf(w, "Verification:  %s\n", verification)
	fmt.Fprintf(w, "Install to:    %s\n", plan.Dir)
}
