package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	anthropicPattern = regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]+$`)
)

// redactedFields are attribute and struct field names whose values never reach a log sink.
var redactedFields = []string{
	"password",
	"secret",
	"token",
	"apiKey",
	"api_key",
	"APIKey",
	"x-api-key",
	"jwtSecret",
	"jwt_secret",
	"JWTSecret",
	"accessToken",
	"access_token",
	"authorization",
	"Authorization",
	"auth",
	"cookie",
	"dsn",
	"DSN",
}

// DefaultRedactOptions returns the masq options used by every handler.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(redactedFields)+5)
	for _, name := range redactedFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(anthropicPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr function that redacts secrets.
// Extra options extend the defaults.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
