//go:build !unix

package binary

import "os"

// dirWritable probes dir by creating and removing a temporary file.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".relinstall-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
