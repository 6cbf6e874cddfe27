package save

// SetSyncDir replaces the directory sync for a test and returns a restore func.
func SetSyncDir(fn func(dir string) error) func() {
	prev := syncDir
	syncDir = fn
	return func() { syncDir = prev }
}
