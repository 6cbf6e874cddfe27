package proc

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/fcupdater/pkg/errors"
)

func requireUnix(t *testing.T, tools ...string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix helpers required")
	}
	r := NewRunner()
	for _, tool := range tools {
		if !r.Available(tool) {
			t.Skipf("%s not installed", tool)
		}
	}
}

func TestExecRunnerMissingTool(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), Command{Name: "fcupdater-no-such-helper"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsToolUnavailable(err))
	assert.False(t, NewRunner().Available("fcupdater-no-such-helper"))
}

func TestExecRunnerStdinStdout(t *testing.T) {
	requireUnix(t, "cat")

	out, err := NewRunner().Run(context.Background(), Command{Name: "cat", Stdin: []byte("주유소")})
	require.NoError(t, err)
	assert.Equal(t, "주유소", string(out))
}

func TestExecRunnerTimeout(t *testing.T) {
	requireUnix(t, "sleep")

	start := time.Now()
	_, err := NewRunner().Run(context.Background(), Command{Name: "sleep", Args: []string{"5"}, Timeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecRunnerExitCode(t *testing.T) {
	requireUnix(t, "sh")

	_, err := NewRunner().Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo bad >&2; exit 3"}})
	require.Error(t, err)

	var perr *pkgerrors.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.ExitCode)
	assert.Equal(t, "bad", perr.Output)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "date +%F", Command{Name: "date", Args: []string{"+%F"}}.String())
	assert.Equal(t, "iconv", Command{Name: "iconv"}.String())
}

func TestToday(t *testing.T) {
	builtIn := time.Now().Format("2006-01-02")

	t.Run("helper output", func(t *testing.T) {
		r := Func(func(context.Context, Command) ([]byte, error) {
			return []byte("2026-03-09\n"), nil
		})
		assert.Equal(t, "2026-03-09", Today(context.Background(), r, 0, nil))
	})

	t.Run("helper timeout falls back", func(t *testing.T) {
		r := Func(func(context.Context, Command) ([]byte, error) {
			return nil, pkgerrors.NewTimeoutError("date", "2s", "killed")
		})
		got := Today(context.Background(), r, time.Second, nil)
		assert.Contains(t, []string{builtIn, time.Now().Format("2006-01-02")}, got)
	})

	t.Run("garbage output falls back", func(t *testing.T) {
		r := Func(func(context.Context, Command) ([]byte, error) {
			return []byte("Mon Mar  9"), nil
		})
		got := Today(context.Background(), r, time.Second, nil)
		assert.Contains(t, []string{builtIn, time.Now().Format("2006-01-02")}, got)
	})

	t.Run("nil runner", func(t *testing.T) {
		got := Today(context.Background(), nil, 0, nil)
		assert.Contains(t, []string{builtIn, time.Now().Format("2006-01-02")}, got)
	})

	t.Run("passes timeout", func(t *testing.T) {
		rec := &Recorder{Runner: Func(func(context.Context, Command) ([]byte, error) {
			return []byte("2026-01-01"), nil
		})}
		Today(context.Background(), rec, 0, nil)
		cmds := rec.Commands()
		require.Len(t, cmds, 1)
		assert.Equal(t, "date", cmds[0].Name)
		assert.Greater(t, cmds[0].Timeout, time.Duration(0))
	})
}
