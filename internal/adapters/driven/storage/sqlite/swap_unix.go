//go:build !windows

package sqlite

import "os"

// syncDir fsyncs a directory so renames inside it survive a crash.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
