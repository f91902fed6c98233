package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads optional dotenv files into the process environment, then fills
// spec from environment variables following its envconfig tags. Variables that
// are already set win over dotenv values.
func Load(spec any, dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := envconfig.Process("", spec); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	return nil
}

// RequireNonEmpty reports every empty value among name/value pairs at once.
func RequireNonEmpty(pairs map[string]string) error {
	var missing []string
	for name, v := range pairs {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
}

