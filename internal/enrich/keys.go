package enrich

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// KeySource supplies a provider API key. Sources are built once at
// construction and injected; there is no package-level credential state.
type KeySource func() (string, error)

// EnvKey returns a KeySource reading the named environment variable. The
// lookup is performed once and cached for the process lifetime.
func EnvKey(name string) KeySource {
	return sync.OnceValues(func() (string, error) {
		key := os.Getenv(name)
		if key == "" {
			return "", fmt.Errorf("%s environment variable not set", name)
		}
		return key, nil
	})
}

// FileKey returns a KeySource reading the key from a secret file, fetched
// once and cached for the process lifetime.
func FileKey(path string) KeySource {
	return sync.OnceValues(func() (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read key file: %w", err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("key file %s is empty", path)
		}
		return key, nil
	})
}
