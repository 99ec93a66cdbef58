package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// OpenAI secret keys: sk-..., sk-proj-...
	openAIKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9_-]{16,}$`)

	// Authorization header values sent to the provider.
	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)
)

// secretFields are attribute and struct field names whose values never reach
// a log sink. APIKey covers config.OpenAIConfig when the whole config is logged.
var secretFields = []string{
	"APIKey",
	"apiKey",
	"api_key",
	"openai_api_key",
	"OPENAI_API_KEY",
	"authorization",
	"Authorization",
	"password",
	"secret",
	"token",
}

// DefaultRedactOptions returns the masq options applied to every handler.
//
// Extra rules can be appended:
//
//	opts := append(logging.DefaultRedactOptions(), masq.WithFieldName("Webhook"))
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretFields)+3)

	for _, name := range secretFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(openAIKeyPattern),
		masq.WithRegex(bearerPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr func that redacts secrets using
// DefaultRedactOptions plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
