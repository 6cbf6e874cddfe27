// Package save writes the output workbook: it resolves collision-free
// names, backs up a master before it is overwritten, writes through a
// temporary file and only promotes a file that passed verification.
package save

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
)

// Result describes a written workbook.
type Result struct {
	Path     string
	Bytes    int64
	Verified bool
	// ArchiveChecked is set when the external archive test ran and passed.
	ArchiveChecked bool
}

// Writer writes workbooks to disk.
type Writer struct {
	opts Options
}

// New creates a Writer.
func New(opts ...Option) *Writer {
	return &Writer{opts: Defaults().Apply(opts...)}
}

// Save writes f to target. The data goes to a temporary file in the target
// directory which is verified and then renamed over target. On failure the
// temporary file and a reserved target are removed.
func (w *Writer) Save(ctx context.Context, f *excelize.File, target Target) (res *Result, err error) {
	ctx = logging.WithFile(logging.WithOperation(ctx, "save"), target.Path)
	logger := logging.FromContext(ctx)

	dir := filepath.Dir(target.Path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(target.Path), os.Getpid(), time.Now().UnixNano()))

	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn().Err(rmErr).Str("tmp", tmp).Msg("Temporary file not removed")
		}
		if relErr := target.Release(); relErr != nil {
			logger.Warn().Err(relErr).Msg("Reserved output not removed")
		}
	}()

	n, err := w.writeTemp(f, tmp)
	if err != nil {
		return nil, err
	}
	res = &Result{Path: target.Path, Bytes: n}

	if !w.opts.fast {
		if err := w.opts.verify(ctx, tmp); err != nil {
			return nil, retarget(err, target.Path)
		}
		res.Verified = true
		if w.opts.archiveCheck {
			res.ArchiveChecked, err = w.archiveCheck(ctx, tmp)
			if err != nil {
				return nil, retarget(err, target.Path)
			}
		}
	}

	if err := os.Rename(tmp, target.Path); err != nil {
		return nil, errors.WrapIO("rename", target.Path, err)
	}
	// The reservation now holds the verified workbook.
	target.Reserved = false
	if err := syncDir(dir); err != nil {
		if w.opts.durable {
			return res, errors.WrapIO("fsync", dir, err)
		}
		logger.Warn().Err(err).Str("dir", dir).Msg("Directory fsync failed")
	}

	logger.Info().
		Int64("bytes", res.Bytes).
		Bool("verified", res.Verified).
		Msg("Workbook saved")
	return res, nil
}

func (w *Writer) writeTemp(f *excelize.File, tmp string) (int64, error) {
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions)
	if err != nil {
		return 0, errors.WrapIO("create", tmp, err)
	}
	n, err := f.WriteTo(out)
	if err != nil {
		_ = out.Close()
		return 0, errors.WrapIO("write", tmp, err)
	}
	if err := out.Sync(); err != nil && w.opts.durable {
		_ = out.Close()
		return 0, errors.WrapIO("fsync", tmp, err)
	}
	if err := out.Close(); err != nil {
		return 0, errors.WrapIO("close", tmp, err)
	}
	return n, nil
}

// archiveCheck runs the external test. Only a failed test is an error; an
// unusable tool falls back to the built-in verification that already passed.
func (w *Writer) archiveCheck(ctx context.Context, p string) (bool, error) {
	logger := logging.FromContext(ctx)
	err := ArchiveCheck(ctx, w.opts.runner, p, w.opts.timeout)
	switch {
	case err == nil:
		return true, nil
	case errors.IsIntegrity(err):
		return false, err
	default:
		logger.Warn().Err(err).Msg("Archive test unavailable, built-in verification only")
		return false, nil
	}
}

// retarget reports integrity errors against the final path instead of the
// temporary file.
func retarget(err error, p string) error {
	var ie *errors.IntegrityError
	if errors.As(err, &ie) {
		ie.Path = p
	}
	return err
}

// syncDir flushes the directory entry of a renamed file.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return d.Sync()
}

// Backup copies master to a collision-free BackupPath next to it and
// returns the backup path. Nothing is left behind on failure.
func Backup(ctx context.Context, master, today string, durable bool) (string, error) {
	target, err := Resolve(BackupPath(master, today), false, false)
	if err != nil {
		return "", err
	}
	if err := copyFile(master, target.Path, durable); err != nil {
		_ = target.Release()
		return "", err
	}
	logging.FromContext(ctx).Info().
		Str("master", master).
		Str("backup", target.Path).
		Msg("Master backed up")
	return target.Path, nil
}

func copyFile(src, dst string, durable bool) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("open", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapIO("copy", dst, err)
	}
	if err := out.Sync(); err != nil && durable {
		_ = out.Close()
		return errors.WrapIO("fsync", dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.WrapIO("close", dst, err)
	}
	return nil
}
