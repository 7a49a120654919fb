//go:build unix

package binary

import "golang.org/x/sys/unix"

// dirWritable asks the kernel whether the current user may create entries in
// dir, honouring effective ids, ACLs and read-only mounts.
func dirWritable(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}
