package newsletter

import (
	"fmt"
	"strings"

	"github.com/lemamita/mamita/pkg/mailer/smtp"
)

// CheckConfig fails with ErrConfigMissing naming every absent SMTP setting.
func CheckConfig(cfg smtp.Config) error {
	missing := cfg.Missing()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrConfigMissing, strings.Join(missing, ", "))
}
