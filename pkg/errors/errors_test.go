package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/fcupdater/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestArgumentConflictError(t *testing.T) {
	err := pkgerrors.NewArgumentConflictError("--in-place", "--output")
	assert.Equal(t, "arguments cannot be used together: --in-place, --output", err.Error())
	assert.True(t, pkgerrors.IsArgumentConflict(err))
	assert.False(t, pkgerrors.IsIO(err))

	wrapped := fmt.Errorf("validate: %w", err)
	assert.True(t, pkgerrors.IsArgumentConflict(wrapped))
}

func TestFormatError(t *testing.T) {
	t.Run("kinds are distinguishable", func(t *testing.T) {
		missing := pkgerrors.NewFormatError(pkgerrors.FormatMissing, "a.xlsx", "", nil)
		unrecognized := pkgerrors.NewFormatError(pkgerrors.FormatUnrecognized, "b.txt", "", nil)
		header := &pkgerrors.FormatError{Kind: pkgerrors.FormatHeaderNotFound, Path: "c.xlsx", Sheet: "유류비"}

		assert.True(t, pkgerrors.IsMissing(missing))
		assert.False(t, pkgerrors.IsUnrecognized(missing))
		assert.True(t, pkgerrors.IsUnrecognized(unrecognized))
		assert.False(t, pkgerrors.IsHeaderNotFound(unrecognized))
		assert.True(t, pkgerrors.IsHeaderNotFound(header))

		for _, err := range []error{missing, unrecognized, header} {
			assert.True(t, pkgerrors.IsFormat(err))
		}
	})

	t.Run("message", func(t *testing.T) {
		err := &pkgerrors.FormatError{
			Kind:    pkgerrors.FormatHeaderNotFound,
			Path:    "master.xlsx",
			Sheet:   "유류비",
			Message: "scanned 200 rows",
		}
		assert.Equal(t, "header row not found: master.xlsx (sheet 유류비): scanned 200 rows", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("zip: not a valid zip file")
		err := pkgerrors.WrapFormat(pkgerrors.FormatCorrupt, "x.xlsx", base)
		require.Error(t, err)
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "corrupt spreadsheet")
		assert.NoError(t, pkgerrors.WrapFormat(pkgerrors.FormatCorrupt, "x.xlsx", nil))
	})
}

func TestDecodeError(t *testing.T) {
	data := []byte{0xb0, 0xa1, 0xff, 0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e}
	err := pkgerrors.NewDecodeError(949, data, nil)

	assert.Equal(t, 18, err.Len)
	assert.Equal(t, "b0 a1 ff ff 01 02 03 04 05 06 07 08 09 0a 0b 0c", err.Sample)
	assert.Contains(t, err.Error(), "code page 949")
	assert.True(t, pkgerrors.IsDecode(err))
}

func TestIntegrityError(t *testing.T) {
	t.Run("with part", func(t *testing.T) {
		err := pkgerrors.NewIntegrityError("out.xlsx", "xl/styles.xml", "missing", nil)
		assert.Equal(t, "integrity check failed for out.xlsx: part xl/styles.xml: missing", err.Error())
		assert.True(t, pkgerrors.IsIntegrity(err))
	})

	t.Run("without part", func(t *testing.T) {
		base := errors.New("zip: not a valid zip file")
		err := pkgerrors.NewIntegrityError("out.xlsx", "", "cannot open archive", base)
		assert.Equal(t, "integrity check failed for out.xlsx: cannot open archive", err.Error())
		assert.Equal(t, base, err.Unwrap())
	})
}

func TestIOError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.IOError{
			Operation: "backup",
			Path:      "/tmp/master.xlsx",
			Message:   "permission denied",
			Err:       errors.New("permission denied"),
		}
		assert.Contains(t, err.Error(), "backup")
		assert.Contains(t, err.Error(), "/tmp/master.xlsx")
		assert.Contains(t, err.Error(), "permission denied")
		assert.True(t, pkgerrors.IsIO(err))
	})

	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.NewIOError("write", "/data/output.xlsx", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("rename", "out.xlsx", errors.New("cross-device link"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "rename", ioErr.Operation)
		assert.Equal(t, "out.xlsx", ioErr.Path)
		assert.NoError(t, pkgerrors.WrapIO("rename", "out.xlsx", nil))
	})
}

func TestTimeoutAndDependencyErrors(t *testing.T) {
	timeout := pkgerrors.NewTimeoutError("iconv", "2s", "killed")
	assert.Equal(t, "operation iconv timed out after 2s: killed", timeout.Error())
	assert.True(t, pkgerrors.IsTimeout(timeout))
	assert.False(t, pkgerrors.IsToolUnavailable(timeout))

	missing := pkgerrors.NewDependencyError("unzip", "not found in PATH")
	assert.Equal(t, "dependency unzip: not found in PATH", missing.Error())
	assert.True(t, pkgerrors.IsToolUnavailable(missing))
}

func TestProcessError(t *testing.T) {
	base := errors.New("exit status 1")
	err := pkgerrors.NewProcessError("decode", "iconv -f CP949 -t UTF-8", "illegal input sequence", base)
	assert.Contains(t, err.Error(), "decode")
	assert.Contains(t, err.Error(), "illegal input sequence")
	assert.Equal(t, base, err.Unwrap())

	quiet := pkgerrors.NewProcessError("date", "date +%F", "", base)
	assert.NotContains(t, quiet.Error(), "Output:")
}

func TestValidationAndConfigErrors(t *testing.T) {
	v := pkgerrors.NewValidationError("master", "", "cannot be empty")
	assert.Equal(t, "validation failed for field master: cannot be empty", v.Error())
	assert.True(t, pkgerrors.IsValidationError(v))

	c := pkgerrors.NewConfigError("limits", "master_header_scan_rows must be positive", nil)
	assert.Contains(t, c.Error(), "limits")
	assert.Nil(t, c.Unwrap())
}
