package textdecode_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fcupdater/internal/proc"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
	"github.com/agentstation/fcupdater/pkg/textdecode"
)

var (
	cp949Station = []byte{0xc1, 0xd6, 0xc0, 0xaf, 0xbc, 0xd2}             // 주유소
	cp949UHC     = []byte{0x8c, 0x63, 0xb9, 0xe6, 0xb0, 0xa2, 0xc7, 0xcf} // 똠방각하
	cp949Broken  = []byte{0xc1, 0xd6, 0xff, 0xfe}
)

func TestDecodeBuiltInTables(t *testing.T) {
	ctx := context.Background()
	d := textdecode.New()

	tests := []struct {
		name     string
		in       []byte
		codePage int
		want     string
	}{
		{"ascii fast path", []byte("SK Energy 123"), textdecode.CodePageCP949, "SK Energy 123"},
		{"cp949", cp949Station, textdecode.CodePageCP949, "주유소"},
		{"uhc extension", cp949UHC, textdecode.CodePageCP949, "똠방각하"},
		{"euc-kr alias", cp949Station, textdecode.CodePageEUCKR, "주유소"},
		{"windows-1252", []byte{0x80, 0x41}, textdecode.CodePageWin1252, "€A"},
		{"latin1 default", []byte{0xe9}, textdecode.CodePageUTF16, "é"},
		{"utf8", []byte("주유소"), textdecode.CodePageUTF8, "주유소"},
		{"empty", nil, textdecode.CodePageCP949, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Decode(ctx, tt.in, tt.codePage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLossyAndStrict(t *testing.T) {
	ctx := context.Background()

	t.Run("lossy substitutes replacement marker", func(t *testing.T) {
		got, err := textdecode.New().Decode(ctx, cp949Broken, textdecode.CodePageCP949)
		require.NoError(t, err)
		assert.Contains(t, got, "주")
		assert.Contains(t, got, "�")
	})

	t.Run("strict fails", func(t *testing.T) {
		d := textdecode.New(textdecode.WithStrict(true))
		assert.True(t, d.Strict())
		_, err := d.Decode(ctx, cp949Broken, textdecode.CodePageCP949)
		require.Error(t, err)
		assert.True(t, errors.IsDecode(err))
	})

	t.Run("strict accepts valid text", func(t *testing.T) {
		d := textdecode.New(textdecode.WithStrict(true))
		got, err := d.Decode(ctx, cp949Station, textdecode.CodePageCP949)
		require.NoError(t, err)
		assert.Equal(t, "주유소", got)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		got, err := textdecode.New().Decode(ctx, []byte{0xe1, 0x80}, textdecode.CodePageUTF8)
		require.NoError(t, err)
		assert.Contains(t, got, "�")

		_, err = textdecode.New(textdecode.WithStrict(true)).Decode(ctx, []byte{0xe1, 0x80}, textdecode.CodePageUTF8)
		assert.True(t, errors.IsDecode(err))
	})
}

func TestDecodeHelper(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	t.Run("helper result is used and cached", func(t *testing.T) {
		rec := &proc.Recorder{Runner: proc.Func(func(_ context.Context, cmd proc.Command) ([]byte, error) {
			assert.Equal(t, "iconv", cmd.Name)
			assert.Equal(t, []string{"-f", "CP949", "-t", "UTF-8"}, cmd.Args)
			assert.Equal(t, time.Second, cmd.Timeout)
			return []byte("헬퍼"), nil
		})}
		d := textdecode.New(textdecode.WithHelper("iconv", rec, time.Second))

		for i := 0; i < 3; i++ {
			got, err := d.Decode(ctx, cp949Station, textdecode.CodePageCP949)
			require.NoError(t, err)
			assert.Equal(t, "헬퍼", got)
		}
		assert.Len(t, rec.Commands(), 1)
		assert.Equal(t, 1, d.HelperCalls())
	})

	t.Run("unavailable helper falls back once", func(t *testing.T) {
		rec := &proc.Recorder{Runner: proc.Func(func(context.Context, proc.Command) ([]byte, error) {
			return nil, errors.NewDependencyError("iconv", "not found in PATH")
		})}
		d := textdecode.New(textdecode.WithHelper("iconv", rec, 0), textdecode.WithLogger(logger.Logger))

		got, err := d.Decode(ctx, cp949Station, textdecode.CodePageCP949)
		require.NoError(t, err)
		assert.Equal(t, "주유소", got)

		got, err = d.Decode(ctx, cp949UHC, textdecode.CodePageCP949)
		require.NoError(t, err)
		assert.Equal(t, "똠방각하", got)

		assert.Len(t, rec.Commands(), 1)
		logger.AssertContains(t, "Decoder helper unavailable")
	})

	t.Run("timeout falls back", func(t *testing.T) {
		d := textdecode.New(textdecode.WithHelper("iconv", proc.Func(func(context.Context, proc.Command) ([]byte, error) {
			return nil, errors.NewTimeoutError("iconv", "1s", "killed")
		}), time.Second), textdecode.WithLogger(logger.Logger))

		got, err := d.Decode(ctx, cp949Station, textdecode.CodePageCP949)
		require.NoError(t, err)
		assert.Equal(t, "주유소", got)
		logger.AssertContains(t, "timed out")
	})

	t.Run("strict still fails when fallback cannot decode", func(t *testing.T) {
		d := textdecode.New(
			textdecode.WithStrict(true),
			textdecode.WithHelper("iconv", proc.Func(func(context.Context, proc.Command) ([]byte, error) {
				return nil, errors.NewProcessError("iconv", "iconv", "illegal input sequence", nil)
			}), 0),
			textdecode.WithLogger(logger.Logger),
		)
		_, err := d.Decode(ctx, cp949Broken, textdecode.CodePageCP949)
		assert.True(t, errors.IsDecode(err))
	})

	t.Run("helper not used for other code pages", func(t *testing.T) {
		rec := &proc.Recorder{Runner: proc.Func(func(context.Context, proc.Command) ([]byte, error) {
			return []byte("x"), nil
		})}
		d := textdecode.New(textdecode.WithHelper("iconv", rec, 0))
		_, err := d.Decode(ctx, []byte{0xe9}, textdecode.CodePageWin1252)
		require.NoError(t, err)
		assert.Empty(t, rec.Commands())
	})
}
