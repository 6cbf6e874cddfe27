package save

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
)

// Target is a resolved output path.
type Target struct {
	Path string
	// Reserved is set when Resolve created an empty placeholder at Path.
	Reserved bool
}

// Release removes the placeholder of a reserved target that was never
// written.
func (t Target) Release() error {
	if !t.Reserved {
		return nil
	}
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", t.Path, err)
	}
	return nil
}

// AutoPath returns the default output path next to master:
// <stem>_updated_<today>.xlsx.
func AutoPath(master, today string) string {
	return derived(master, constants.UpdatedInfix, today)
}

// BackupPath returns the backup path of master: <stem>_backup_<today> with
// the extension of master, so a legacy master keeps its format.
func BackupPath(master, today string) string {
	ext := filepath.Ext(master)
	if ext == "" {
		ext = constants.OutputExtension
	}
	return strings.TrimSuffix(derived(master, constants.BackupInfix, today), constants.OutputExtension) + ext
}

// InPlacePath returns the path an in-place run writes: master itself, or
// its .xlsx sibling when master is not an xlsx file.
func InPlacePath(master string) string {
	ext := filepath.Ext(master)
	if strings.EqualFold(ext, constants.OutputExtension) {
		return master
	}
	return strings.TrimSuffix(master, ext) + constants.OutputExtension
}

func derived(master, infix, today string) string {
	base := filepath.Base(master)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(master), stem+infix+today+constants.OutputExtension)
}

// Suffixed returns path with _n inserted before its extension.
func Suffixed(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), n, ext)
}

// Resolve picks the path to write. With overwrite the path is used as is.
// Otherwise the first free candidate of path, path_1, path_2, ... is
// reserved by creating it exclusively; a dry run only looks for it.
func Resolve(path string, overwrite, dryRun bool) (Target, error) {
	if overwrite {
		return Target{Path: path}, nil
	}
	for n := 0; n < constants.MaxPathAttempts; n++ {
		candidate := path
		if n > 0 {
			candidate = Suffixed(path, n)
		}
		if dryRun {
			if _, err := os.Lstat(candidate); os.IsNotExist(err) {
				return Target{Path: candidate}, nil
			}
			continue
		}
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions)
		if err == nil {
			if err := f.Close(); err != nil {
				_ = os.Remove(candidate)
				return Target{}, errors.WrapIO("reserve", candidate, err)
			}
			return Target{Path: candidate, Reserved: true}, nil
		}
		if !os.IsExist(err) {
			return Target{}, errors.WrapIO("reserve", candidate, err)
		}
	}
	return Target{}, errors.NewIOError("reserve", path, fmt.Errorf("no free name after %d attempts", constants.MaxPathAttempts))
}
