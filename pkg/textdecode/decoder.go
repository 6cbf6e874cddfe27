// Package textdecode turns single-byte legacy spreadsheet text into UTF-8.
//
// Korean workbooks store 8-bit strings in CP949 (UHC). The built-in tables
// from golang.org/x/text decode them; an external helper such as iconv can
// be configured as a first choice. The helper is best effort: when it is
// missing, slow or rejects the input the decoder quietly uses the tables.
//
// In lossy mode undecodable bytes become U+FFFD. In strict mode they are a
// DecodeError.
package textdecode

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/agentstation/fcupdater/internal/proc"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
)

// Code pages seen in legacy workbooks.
const (
	CodePageUTF16   = 1200
	CodePageLatin1  = 28591
	CodePageWin1252 = 1252
	CodePageUTF8    = 65001
	CodePageCP949   = 949
	CodePageJohab   = 1361
	CodePageEUCKR   = 51949
	CodePageSJIS    = 932
	CodePageGBK     = 936
	CodePageBig5    = 950
)

// Decoder decodes legacy text. The zero value is a lossy decoder without a helper.
type Decoder struct {
	strict  bool
	helper  string
	timeout time.Duration
	runner  proc.Runner
	logger  *zerolog.Logger

	mu          sync.Mutex
	helperDown  bool
	cache       map[string]string
	helperCalls int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithStrict makes undecodable bytes a DecodeError.
func WithStrict(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

// WithHelper delegates Korean text to an external helper first. Only
// "iconv" is understood; an empty name disables the helper.
func WithHelper(name string, r proc.Runner, timeout time.Duration) Option {
	return func(d *Decoder) {
		d.helper = name
		d.runner = r
		d.timeout = timeout
	}
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *zerolog.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// New creates a Decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Strict reports whether the decoder rejects undecodable bytes.
func (d *Decoder) Strict() bool {
	return d.strict
}

// Decode converts b from codePage to UTF-8.
func (d *Decoder) Decode(ctx context.Context, b []byte, codePage int) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	if isASCII(b) {
		return string(b), nil
	}

	switch codePage {
	case CodePageUTF8:
		if !utf8.Valid(b) {
			if d.strict {
				return "", errors.NewDecodeError(codePage, b, nil)
			}
			return string([]rune(string(b))), nil
		}
		return string(b), nil
	case CodePageCP949, CodePageJohab, CodePageEUCKR:
		if s, ok := d.viaHelper(ctx, b); ok {
			return s, nil
		}
		return d.table(korean.EUCKR, b, codePage)
	case CodePageSJIS:
		return d.table(japanese.ShiftJIS, b, codePage)
	case CodePageGBK:
		return d.table(simplifiedchinese.GBK, b, codePage)
	case CodePageBig5:
		return d.table(traditionalchinese.Big5, b, codePage)
	case CodePageWin1252:
		return d.table(charmap.Windows1252, b, codePage)
	default:
		return d.table(charmap.ISO8859_1, b, codePage)
	}
}

// table decodes with a built-in table. The x/text decoders substitute
// U+FFFD for invalid input, which strict mode turns into an error.
func (d *Decoder) table(enc encoding.Encoding, b []byte, codePage int) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		if d.strict {
			return "", errors.NewDecodeError(codePage, b, err)
		}
		return string(out), nil
	}
	if d.strict && containsReplacement(out) {
		return "", errors.NewDecodeError(codePage, b, nil)
	}
	return string(out), nil
}

// viaHelper runs the configured helper. ok is false whenever the caller
// should fall back to the built-in table.
func (d *Decoder) viaHelper(ctx context.Context, b []byte) (string, bool) {
	if d.helper == "" || d.runner == nil {
		return "", false
	}

	d.mu.Lock()
	if d.helperDown {
		d.mu.Unlock()
		return "", false
	}
	if s, ok := d.cache[string(b)]; ok {
		d.mu.Unlock()
		return s, true
	}
	d.helperCalls++
	d.mu.Unlock()

	out, err := d.runner.Run(ctx, helperCommand(d.helper, b, d.timeout))
	if err != nil {
		d.helperFailed(err)
		return "", false
	}
	if !utf8.Valid(out) {
		return "", false
	}

	s := string(out)
	d.mu.Lock()
	if d.cache == nil || len(d.cache) >= constants.DecoderCacheSize {
		d.cache = make(map[string]string)
	}
	d.cache[string(b)] = s
	d.mu.Unlock()
	return s, true
}

// helperFailed records a helper failure. A missing helper is not retried;
// a timeout or a rejected input only affects the current string.
func (d *Decoder) helperFailed(err error) {
	logger := d.logger
	if logger == nil {
		logger = logging.Default()
	}

	switch {
	case errors.IsToolUnavailable(err):
		d.mu.Lock()
		first := !d.helperDown
		d.helperDown = true
		d.mu.Unlock()
		if first {
			logger.Warn().Str("helper", d.helper).Msg("Decoder helper unavailable, using built-in tables")
		}
	case errors.IsTimeout(err):
		logger.Warn().Err(err).Str("helper", d.helper).Msg("Decoder helper timed out, using built-in tables")
	default:
		logger.Debug().Err(err).Str("helper", d.helper).Msg("Decoder helper rejected input, using built-in tables")
	}
}

// HelperCalls reports how many strings were sent to the helper.
func (d *Decoder) HelperCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.helperCalls
}

func helperCommand(name string, b []byte, timeout time.Duration) proc.Command {
	return proc.Command{
		Name:    name,
		Args:    []string{"-f", "CP949", "-t", "UTF-8"},
		Stdin:   b,
		Timeout: timeout,
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func containsReplacement(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError {
			return true
		}
		b = b[size:]
	}
	return false
}
