package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/mitchellh/go-homedir"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
	"github.com/ZebulonRouseFrantzich/relinstall/internal/shell"
)

// Config holds configuration for the installer
type Config struct {
	// Package is the release to install (required)
	Package Package
	// Version pins a release tag; empty resolves the latest release
	Version string
	// InstallDirs is the ordered candidate list (default: DefaultInstallDirs)
	InstallDirs []string
	// ChecksumName is the manifest file name (default: DefaultChecksumName)
	ChecksumName string
	// APIBase is the release index endpoint (default: DefaultAPIBase)
	APIBase string
	// DownloadBase is the asset host (default: DefaultDownloadBase)
	DownloadBase string
	// Keyring enables signature verification of the manifest when non-empty
	Keyring openpgp.EntityList
	// Tools is the checksum tool probe order (default: DefaultChecksumTools)
	Tools []ChecksumTool

	Detector        platform.Detector
	HTTPClient      *http.Client
	WorkspaceParent string
	// Progress receives download progress bars; nil disables them
	Progress io.Writer
	Logger   Logger

	// Getenv reads PATH, HOME and SHELL (default: os.Getenv)
	Getenv func(string) string
	// Writable reports whether an existing directory accepts new files
	Writable func(string) bool
}

// Installer orchestrates resolve, download, verify, extract and install for
// one package.
type Installer struct {
	pkg          Package
	version      string
	installDirs  []string
	checksumName string
	downloadBase string
	tools        []ChecksumTool
	parent       string
	getenv       func(string) string
	writable     func(string) bool

	detector   platform.Detector
	shells     *shell.Detector
	releases   *ReleaseClient
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	logger     Logger
}

// NewInstaller creates a new installer
func NewInstaller(cfg Config) (*Installer, error) {
	pkg := cfg.Package
	if pkg.Binary == "" {
		pkg.Binary = pkg.Repo
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	version := ""
	if cfg.Version != "" {
		v, err := NormalizeTag(cfg.Version)
		if err != nil {
			return nil, err
		}
		version = v
	}

	dirs := cfg.InstallDirs
	if len(dirs) == 0 {
		dirs = DefaultInstallDirs
	}

	tools := cfg.Tools
	if len(tools) == 0 {
		tools = DefaultChecksumTools()
	}

	detector := cfg.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}

	getenv := cfg.Getenv
	shells := shell.NewDetector()
	if getenv == nil {
		getenv = os.Getenv
	} else {
		shells = shell.NewDetectorWithEnv(getenv)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = &noopLogger{}
	}

	downloader := NewDownloader(cfg.HTTPClient)
	if cfg.Progress != nil {
		downloader.WithProgress(cfg.Progress)
	}

	return &Installer{
		pkg:          pkg,
		version:      version,
		installDirs:  dirs,
		checksumName: cfg.ChecksumName,
		downloadBase: cfg.DownloadBase,
		tools:        tools,
		parent:       cfg.WorkspaceParent,
		getenv:       getenv,
		writable:     cfg.Writable,
		detector:     detector,
		shells:       shells,
		releases:     NewReleaseClient(cfg.HTTPClient, cfg.APIBase),
		downloader:   downloader,
		verifier:     NewVerifier(cfg.Keyring),
		extractor:    NewExtractor(),
		logger:       logger,
	}, nil
}

// Plan runs the resolution steps: platform, checksum tool, version, install
// directory and artifact. Nothing is downloaded or written.
func (in *Installer) Plan(ctx context.Context) (*Plan, error) {
	info, err := in.resolvePlatform(ctx)
	if err != nil {
		return nil, &StepError{Step: StepResolvePlatform, Err: err}
	}

	tool, err := in.selectTool(ctx)
	if err != nil {
		return nil, &StepError{Step: StepSelectTool, Err: err}
	}

	tag, err := in.resolveVersion(ctx)
	if err != nil {
		return nil, &StepError{Step: StepResolveVersion, Err: err}
	}

	dir, err := in.chooseDir()
	if err != nil {
		return nil, &StepError{Step: StepChooseDir, Err: err}
	}

	artifact, err := NewArtifact(in.pkg, tag, info, in.downloadBase, in.checksumName)
	if err != nil {
		return nil, &StepError{Step: StepArtifact, Err: err}
	}
	in.logger.Debug("artifact", "archive", artifact.ArchiveName, "url", artifact.ArchiveURL)

	return &Plan{
		Package:  in.pkg,
		Platform: info,
		Tool:     tool.Name(),
		Dir:      dir,
		Artifact: artifact,
	}, nil
}

// Install resolves, downloads, verifies, extracts and installs the package.
// The workspace is removed on every return path. Nothing is written to the
// install directory unless verification succeeded.
func (in *Installer) Install(ctx context.Context) (*InstallResult, error) {
	start := time.Now()

	info, err := in.resolvePlatform(ctx)
	if err != nil {
		return nil, &StepError{Step: StepResolvePlatform, Err: err}
	}

	tool, err := in.selectTool(ctx)
	if err != nil {
		return nil, &StepError{Step: StepSelectTool, Err: err}
	}

	tag, err := in.resolveVersion(ctx)
	if err != nil {
		return nil, &StepError{Step: StepResolveVersion, Err: err}
	}

	dir, err := in.chooseDir()
	if err != nil {
		return nil, &StepError{Step: StepChooseDir, Err: err}
	}

	artifact, err := NewArtifact(in.pkg, tag, info, in.downloadBase, in.checksumName)
	if err != nil {
		return nil, &StepError{Step: StepArtifact, Err: err}
	}

	ws, err := NewWorkspace(in.parent)
	if err != nil {
		return nil, &StepError{Step: StepWorkspace, Err: err}
	}
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			in.logger.Warn("failed to remove workspace", "dir", ws.Dir(), "err", rmErr)
		}
	}()
	in.logger.Debug("workspace created", "dir", ws.Dir())

	archivePath, manifestPath, signaturePath, err := in.download(ctx, ws, artifact)
	if err != nil {
		return nil, &StepError{Step: StepDownload, Err: err}
	}

	verified, err := in.verify(ctx, tool, artifact, archivePath, manifestPath, signaturePath)
	if err != nil {
		return nil, &StepError{Step: StepVerify, Err: err}
	}

	extracted := filepath.Join(ws.Dir(), "extracted", in.pkg.Binary)
	in.logger.Debug("extracting", "archive", artifact.ArchiveName, "member", in.pkg.Binary)
	if err := in.extractor.ExtractBinary(archivePath, extracted, in.pkg.Binary); err != nil {
		return nil, &StepError{Step: StepExtract, Err: err}
	}

	dest, permWarning, err := InstallExecutable(extracted, dir, in.pkg.Binary)
	if err != nil {
		return nil, &StepError{Step: StepInstall, Err: err}
	}
	if permWarning != nil {
		in.logger.Warn("installed binary may not be executable", "path", dest, "err", permWarning)
	}
	in.logger.Info("installed", "binary", in.pkg.Binary, "version", artifact.Version, "path", dest)

	result := &InstallResult{
		Plan: Plan{
			Package:  in.pkg,
			Platform: info,
			Tool:     tool.Name(),
			Dir:      dir,
			Artifact: artifact,
		},
		Path:              dest,
		Verified:          verified,
		PermissionWarning: permWarning,
		OnPath:            OnPath(dir, in.getenv("PATH")),
		Duration:          time.Since(start),
	}
	if !result.OnPath {
		result.Advice = in.pathAdvice(dir)
	}

	return result, nil
}

func (in *Installer) resolvePlatform(ctx context.Context) (*platform.Info, error) {
	in.logger.Debug("resolving platform")
	info, err := in.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	if distro := info.GetDistro(); distro != nil && distro.ID != "" {
		in.logger.Debug("platform detected", "platform", info.String(), "distro", distro.ID, "distro_version", distro.Version)
	} else {
		in.logger.Debug("platform detected", "platform", info.String())
	}
	return info, nil
}

func (in *Installer) selectTool(ctx context.Context) (ChecksumTool, error) {
	in.logger.Debug("selecting checksum tool")
	tool, err := SelectChecksumTool(ctx, in.tools, in.logger)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("checksum tool selected", "tool", tool.Name())
	return tool, nil
}

func (in *Installer) resolveVersion(ctx context.Context) (string, error) {
	if in.version != "" {
		in.logger.Info("using pinned version", "version", in.version)
		return in.version, nil
	}

	in.logger.Debug("resolving latest release", "package", in.pkg.String())
	tag, err := in.releases.LatestTag(ctx, in.pkg.Owner, in.pkg.Repo)
	if err != nil {
		return "", err
	}
	in.logger.Info("latest release", "version", tag)
	return tag, nil
}

func (in *Installer) chooseDir() (string, error) {
	in.logger.Debug("choosing install directory", "candidates", in.installDirs)
	candidates, err := ExpandCandidates(in.installDirs)
	if err != nil {
		return "", err
	}
	dir, err := ChooseInstallDir(candidates, in.writable)
	if err != nil {
		return "", err
	}
	in.logger.Info("install directory", "dir", dir)
	return dir, nil
}

// download fetches the archive and manifest into ws, plus the manifest
// signature when one is required. signaturePath is empty otherwise.
func (in *Installer) download(ctx context.Context, ws *Workspace, a *Artifact) (archivePath, manifestPath, signaturePath string, err error) {
	archivePath = ws.Path(a.ArchiveName)
	in.logger.Debug("downloading", "url", a.ArchiveURL)
	if err := in.downloader.DownloadToFile(ctx, a.ArchiveURL, archivePath); err != nil {
		return "", "", "", err
	}

	manifestPath = ws.Path(a.ChecksumName)
	in.logger.Debug("downloading", "url", a.ChecksumURL)
	if err := in.downloader.DownloadToFile(ctx, a.ChecksumURL, manifestPath); err != nil {
		return "", "", "", err
	}

	if in.verifier.RequiresSignature() {
		signaturePath = ws.Path(a.ChecksumName + signatureSuffix)
		in.logger.Debug("downloading", "url", a.SignatureURL)
		if err := in.downloader.DownloadToFile(ctx, a.SignatureURL, signaturePath); err != nil {
			return "", "", "", err
		}
	}

	return archivePath, manifestPath, signaturePath, nil
}

func (in *Installer) verify(ctx context.Context, tool ChecksumTool, a *Artifact, archivePath, manifestPath, signaturePath string) (VerificationMethod, error) {
	method := VerificationSHA256
	if in.verifier.RequiresSignature() {
		in.logger.Debug("verifying manifest signature", "manifest", a.ChecksumName)
		if err := in.verifier.VerifySignature(manifestPath, signaturePath); err != nil {
			return VerificationNone, err
		}
		method = VerificationSignedSHA256
	}

	in.logger.Debug("verifying checksum", "archive", a.ArchiveName, "tool", tool.Name())
	if err := in.verifier.Verify(ctx, tool, archivePath, manifestPath, a.ArchiveName); err != nil {
		return VerificationNone, err
	}
	in.logger.Info("verified", "archive", a.ArchiveName, "method", method.String())
	return method, nil
}

func (in *Installer) pathAdvice(dir string) string {
	home := in.getenv("HOME")
	if home == "" {
		if h, err := homedir.Dir(); err == nil {
			home = h
		}
	}
	detected := in.shells.Detect()
	in.logger.Debug("shell detected", "shell", detected.Shell, "method", detected.Method)
	return shell.PathAdvice(detected.Shell, dir, home)
}

// String formats the result summary line.
func (r *InstallResult) String() string {
	return fmt.Sprintf("%s %s installed to %s (verified: %s)",
		r.Package.Binary, r.Artifact.Version, r.Path, r.Verified)
}
