package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = ".isoanchor"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"
	// ConfigPathEnv overrides the configuration file location.
	ConfigPathEnv = "ISOANCHOR_CONFIG"
)

const fileHeader = "# isoanchor configuration\n# Values may reference environment variables as ${NAME} or ${NAME:-default}.\n"

// envVarPattern matches ${NAME} and ${NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Loader reads and writes one configuration file.
type Loader struct {
	path string
}

// NewLoader returns a loader for $ISOANCHOR_CONFIG, or for
// ~/.isoanchor/config.yaml when the variable is unset.
func NewLoader() (*Loader, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return NewLoaderWithPath(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewLoaderWithPath(filepath.Join(home, ConfigDirName, ConfigFileName)), nil
}

// NewLoaderWithPath returns a loader for the given file.
func NewLoaderWithPath(path string) *Loader {
	return &Loader{path: path}
}

// ConfigPath returns the configuration file path.
func (l *Loader) ConfigPath() string {
	return l.path
}

// Load returns the configuration with environment references expanded and
// values validated. A missing file yields the defaults; keys missing from
// the file keep their default values.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read(true)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", l.path, err)
	}
	return cfg, nil
}

// LoadRaw returns the configuration as written, without expansion or
// validation. config set and config show work on this form so that
// ${NAME} references survive a rewrite.
func (l *Loader) LoadRaw() (*Config, error) {
	return l.read(false)
}

func (l *Loader) read(expand bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if expand {
		data = []byte(expandEnvVars(string(data)))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", l.path, err)
	}
	return cfg, nil
}

// Save writes cfg through a temporary file in the same directory, so a
// crash never leaves a truncated config behind.
func (l *Loader) Save(cfg *Config) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.WriteString(tmp, fileHeader); err == nil {
		_, err = tmp.Write(body)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), l.path)
	}
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists reports whether the configuration file exists.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Init writes the default configuration unless a file is already there.
func (l *Loader) Init() error {
	if l.Exists() {
		return fmt.Errorf("config file already exists: %s", l.path)
	}
	return l.Save(DefaultConfig())
}

// expandEnvVars replaces ${NAME} with the variable's value and
// ${NAME:-default} with the value or, when unset or empty, the default.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}

// GetEnvOrDefault returns the environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool reports whether the variable is set to true, 1 or yes.
func GetEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	}
	return false
}
