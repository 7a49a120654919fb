package binary

import (
	"errors"
	"fmt"
)

// Installation failures. Every one of them is fatal and none is retried;
// callers classify with errors.Is.
var (
	ErrNoChecksumTool       = errors.New("no usable checksum tool")
	ErrReleaseLookupFailed  = errors.New("release lookup failed")
	ErrNoWritableLocation   = errors.New("no writable install location")
	ErrDownloadFailed       = errors.New("download failed")
	ErrChecksumEntryMissing = errors.New("checksum entry missing")
	ErrChecksumMismatch     = errors.New("checksum mismatch")
	ErrSignatureInvalid     = errors.New("checksum manifest signature invalid")
	ErrExtractionFailed     = errors.New("extraction failed")
	ErrInstallWriteFailed   = errors.New("install write failed")
)

// Step names the stage of the install pipeline.
type Step string

const (
	StepResolvePlatform Step = "resolve platform"
	StepSelectTool      Step = "select checksum tool"
	StepResolveVersion  Step = "resolve version"
	StepChooseDir       Step = "choose install directory"
	StepArtifact        Step = "construct artifact"
	StepWorkspace       Step = "create workspace"
	StepDownload        Step = "download"
	StepVerify          Step = "verify"
	StepExtract         Step = "extract"
	StepInstall         Step = "install"
)

// StepError records which pipeline step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ChecksumError provides details about a digest mismatch.
// It wraps ErrChecksumMismatch so callers can use errors.Is.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s\nexpected: %s\nactual:   %s", e.Filename, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}
