package cli

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileOverrideVar names a .env file that takes precedence over --env.
const EnvFileOverrideVar = "MTS_ENV_FILE"

// ErrNoEnvFile is returned by EnvLoader.Load when no candidate file exists.
var ErrNoEnvFile = errors.New("no .env file found")

// EnvLoader fills the process environment from a .env file. Variables that
// are already set are never overwritten.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Load tries, in order, $MTS_ENV_FILE, the --env value, its basename and the
// default path, and returns the first file that loaded.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	var lastErr error
	for _, candidate := range l.candidates() {
		err := godotenv.Load(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			lastErr = fmt.Errorf("load %s: %w", candidate, err)
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoEnvFile
}

func (l *EnvLoader) candidates() []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	add(os.Getenv(EnvFileOverrideVar))
	requested := ""
	if l.value != nil {
		requested = *l.value
	}
	add(requested)
	if requested != "" {
		add(filepath.Base(requested))
	}
	add(l.defaultPath)
	return out
}
