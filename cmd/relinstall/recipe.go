package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/binary"
	"github.com/ZebulonRouseFrantzich/relinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/relinstall/internal/logging"
	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
)

var errNoPackage = errors.New("no package given: pass owner/repo or set owner and repo in a recipe (--config)")

// recipeError keeps the parse error reachable while printing the
// user-facing rendering from config.FormatError.
type recipeError struct {
	msg string
	err error
}

func (e *recipeError) Error() string { return e.msg }

func (e *recipeError) Unwrap() error { return e.err }

func (a *app) logger() logging.Logger {
	return logging.Adapt(logging.New(a.stderr, logging.Options{Verbose: a.verbose}))
}

// loadRecipe parses the --config recipe, if any, and merges the flags and
// positional owner/repo over it.
func (a *app) loadRecipe(ctx context.Context, logger logging.Logger, opts *resolveOptions, args []string) (config.Recipe, error) {
	var base config.Recipe
	if a.configPath != "" {
		parsed, err := config.NewParser(platform.NewDetector()).WithLogger(logger).ParseFile(ctx, a.configPath)
		if err != nil {
			return config.Recipe{}, &recipeError{msg: config.FormatError(err, a.verbose), err: err}
		}
		base = *parsed
	}

	override := config.Recipe{
		Binary:      opts.binary,
		Version:     opts.tag,
		InstallDirs: opts.dirs,
		Checksums:   opts.checksums,
		Keyring:     opts.keyring,
		APIURL:      opts.apiURL,
		DownloadURL: opts.downloadURL,
	}
	if len(args) > 0 {
		owner, repo, err := parsePackageArg(args[0])
		if err != nil {
			return config.Recipe{}, err
		}
		override.Owner = owner
		override.Repo = repo
	}

	merged := base.Merge(override)
	if err := merged.Validate(); err != nil {
		return config.Recipe{}, err
	}
	if merged.Owner == "" || merged.Repo == "" {
		return config.Recipe{}, errNoPackage
	}
	return merged, nil
}

// installerConfig maps a merged recipe onto the installer configuration.
func (a *app) installerConfig(r config.Recipe, opts *resolveOptions, logger logging.Logger) (binary.Config, error) {
	cfg := binary.Config{
		Package: binary.Package{
			Owner:  r.Owner,
			Repo:   r.Repo,
			Binary: r.BinaryName(),
		},
		Version:      r.Version,
		InstallDirs:  r.InstallDirs,
		ChecksumName: r.Checksums,
		APIBase:      r.APIURL,
		DownloadBase: r.DownloadURL,
		Logger:       logger,
	}

	if r.Keyring != "" {
		keyring, err := binary.LoadKeyring(r.Keyring)
		if err != nil {
			return binary.Config{}, fmt.Errorf("load keyring %s: %w", r.Keyring, err)
		}
		cfg.Keyring = keyring
		logger.Debug("keyring loaded", "path", r.Keyring, "keys", len(keyring))
	}

	if opts.builtinDigest {
		cfg.Tools = []binary.ChecksumTool{binary.BuiltinTool{}}
	}

	return cfg, nil
}

// parsePackageArg splits "owner/repo".
func parsePackageArg(arg string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(arg), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid package %q: expected owner/repo", arg)
	}
	return owner, repo, nil
}
