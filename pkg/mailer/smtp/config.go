package smtp

import (
	"fmt"
	"strings"
)

// Config holds the five SMTP settings. Every field is required.
type Config struct {
	Host        string `env:"SMTP_HOST"`
	Port        int    `env:"SMTP_PORT"`
	Username    string `env:"SMTP_USER"`
	Password    string `env:"SMTP_PASS"`
	FromAddress string `env:"SMTP_FROM_EMAIL"`
}

// Missing names every absent or invalid setting, in declaration order.
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if c.Port < 1 || c.Port > 65535 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(c.FromAddress) == "" {
		missing = append(missing, "from address")
	}
	return missing
}

// ImplicitTLS reports whether the connection starts with TLS (SMTPS) rather
// than upgrading with STARTTLS.
func (c Config) ImplicitTLS() bool {
	return c.Port == 465
}

// String omits the password.
func (c Config) String() string {
	return fmt.Sprintf("smtp://%s@%s:%d (from %s)", c.Username, c.Host, c.Port, c.FromAddress)
}
