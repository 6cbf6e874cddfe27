package proc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Today returns the local date as YYYY-MM-DD. It asks the date helper first
// and falls back to the built-in clock when the helper is missing, slow or
// prints something unexpected.
func Today(ctx context.Context, r Runner, timeout time.Duration, logger *zerolog.Logger) string {
	fallback := time.Now().Format(constants.DateLayout)
	if r == nil {
		return fallback
	}
	if timeout <= 0 {
		timeout = constants.DateHelperTimeout
	}

	out, err := r.Run(ctx, Command{Name: "date", Args: []string{"+%F"}, Timeout: timeout})
	if err != nil {
		if logger != nil {
			logger.Debug().Err(err).Msg("Date helper failed, using built-in clock")
		}
		return fallback
	}

	date := strings.TrimSpace(string(out))
	if _, perr := time.Parse(constants.DateLayout, date); perr != nil {
		if logger != nil {
			logger.Warn().Str("output", date).Msg("Date helper printed an unexpected value, using built-in clock")
		}
		return fallback
	}
	return date
}
