// Package shell works out which shell the user runs so relinstall can print
// PATH guidance that fits it.
//
// Shell detection tries, in order:
//  1. The $SHELL environment variable
//  2. The name of the parent process (via gopsutil)
//
// When neither names a supported shell the advice falls back to a generic
// POSIX export line.
//
// Guidance is informational only: this package never edits rc files.
package shell
