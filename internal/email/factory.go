package email

import (
	"fmt"
	"strings"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/domain"
)

// Values accepted in EMAIL_PROVIDER.
const (
	ProviderLog    = "log"
	ProviderResend = "resend"
)

// NewEmailService returns the sender selected by EMAIL_PROVIDER. The log
// provider writes messages through slog and is the default for development.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.GetEmailProvider()))
	switch provider {
	case ProviderLog, "":
		return NewLogSender(cfg.GetEmailSender(), nil), nil
	case ProviderResend:
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider %q requires EMAIL_API_KEY", ProviderResend)
		}
		return NewResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender()), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q (expected %s or %s)", provider, ProviderLog, ProviderResend)
	}
}
