package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// app carries the global flags and output streams shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	verbose    bool
	configPath string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// interactive reports whether stderr is a terminal. Progress bars are only
// drawn there.
func (a *app) interactive() bool {
	f, ok := a.stderr.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveOptions are the flags that decide what gets installed and where.
// Empty values fall through to the recipe, then to built-in defaults.
type resolveOptions struct {
	binary        string
	tag           string
	dirs          []string
	checksums     string
	keyring       string
	apiURL        string
	downloadURL   string
	builtinDigest bool
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.binary, "binary", "", "executable name inside the archive (default: repo name)")
	flags.StringVarP(&opts.tag, "tag", "t", "", "install this release tag instead of the latest")
	flags.StringArrayVarP(&opts.dirs, "dir", "d", nil, "candidate install directory, in preference order (repeatable)")
	flags.StringVar(&opts.checksums, "checksums", "", "checksum manifest file name (default: checksums.txt)")
	flags.StringVar(&opts.keyring, "keyring", "", "OpenPGP public keyring; verifies the manifest signature")
	flags.StringVar(&opts.apiURL, "api-url", "", "release index API base URL")
	flags.StringVar(&opts.downloadURL, "download-url", "", "release asset base URL")
	flags.BoolVar(&opts.builtinDigest, "builtin-digest", false, "compute SHA-256 in-process instead of probing sha256sum/shasum")
}

func newRootCommand(a *app) *cobra.Command {
	opts := &installOptions{}

	root := &cobra.Command{
		Use:   "relinstall [owner/repo]",
		Short: "Install a verified release binary",
		Long: `relinstall downloads the release archive of a prebuilt binary for this
machine, verifies it against the published SHA-256 manifest (and, with a
keyring, the manifest's OpenPGP signature), and places the executable in
the first writable directory of an ordered candidate list.

Running relinstall without a subcommand is the same as "relinstall install".`,
		Example: `  # Install the latest release
  relinstall acme/context

  # Pin a release and prefer a user directory
  relinstall install acme/context --tag v1.4.0 --dir ~/.local/bin

  # Show what would be installed
  relinstall plan acme/context

  # Read package and directories from a Lua recipe
  relinstall --config ~/.config/relinstall/context.lua`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), opts, args)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("relinstall {{.Version}}\n")

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Lua recipe file")
	addInstallFlags(root, opts)

	root.AddCommand(newInstallCommand(a))
	root.AddCommand(newPlanCommand(a))

	return root
}
