package postgres

import (
	"fmt"
	"strings"

	"github.com/portfolio-site/portfolio-backend/config"
)

const applicationName = "portfolio-backend"

// DSN builds a lib/pq connection string. DATABASE_URL wins over the
// individual DB_* settings.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	pairs := []string{
		"host=" + quote(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quote(cfg.User),
		"dbname=" + quote(cfg.Name),
		"sslmode=" + quote(sslmode),
		"application_name=" + applicationName,
	}
	if cfg.Password != "" {
		pairs = append(pairs, "password="+quote(cfg.Password))
	}
	return strings.Join(pairs, " ")
}

// quote escapes a keyword/value parameter the way libpq expects.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
