package app

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads one or more dotenv files into the process environment.
// Later files override earlier ones; variables already present in the real
// environment with a non-empty value are never overwritten. Missing files
// are skipped.
func LoadEnvFiles(paths ...string) error {
	preset := make(map[string]bool)
	for _, kv := range os.Environ() {
		if eq := strings.IndexByte(kv, '='); eq > 0 && kv[eq+1:] != "" {
			preset[kv[:eq]] = true
		}
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		values, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		for k, v := range values {
			if preset[k] {
				continue
			}
			_ = os.Setenv(k, v)
		}
	}
	return nil
}
