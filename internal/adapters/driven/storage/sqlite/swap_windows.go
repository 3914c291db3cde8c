//go:build windows

package sqlite

// syncDir is a no-op on Windows; directory fsync is not available.
func syncDir(string) error { return nil }
