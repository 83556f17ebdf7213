package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/carectl/internal/logger"
)

const (
	defaultAPIURL       = "http://localhost:8080/api"
	defaultLoggingLevel = logger.LevelWarn
	defaultEnvironment  = logger.EnvDevelopment
	defaultProfile      = "default"
	defaultOutput       = outputTable
)

type Config struct {
	// Backend base url, paths like /auth/login are appended to it
	APIURL string

	// Default logging level
	LogLevel string

	// Environment
	Environment string

	// Where tokens are kept: memory://, sqlite://<path>, a plain file path or postgres://...
	// Empty means sqlite file in the user config directory
	CredentialsDSN string

	// Hex encoded 32 bytes key, tokens are stored encrypted when set (see gensecret)
	SecretKey string

	// Tokens of several accounts may live in one store, each under its own profile
	Profile string

	// Output format: table, json or yaml
	Output string
}

func NewConfig() *Config {
	return &Config{
		APIURL:      defaultAPIURL,
		LogLevel:    defaultLoggingLevel,
		Environment: defaultEnvironment,
		Profile:     defaultProfile,
		Output:      defaultOutput,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"CARE_API_URL":    setString(&c.APIURL),
		"LOG_LEVEL":       setString(&c.LogLevel),
		"ENVIRONMENT":     setString(&c.Environment),
		"CREDENTIALS_DSN": setString(&c.CredentialsDSN),
		"SECRET_KEY":      setString(&c.SecretKey),
		"CARE_PROFILE":    setString(&c.Profile),
		"CARE_OUTPUT":     setString(&c.Output),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

// RegisterFlags binds options to fs, current values become flag defaults
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.APIURL, "api", "a", c.APIURL, "Backend API base url")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.CredentialsDSN, "credentials", "c", c.CredentialsDSN, "Credential store (memory://, sqlite://<path>, postgres://...)")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Hex key to encrypt stored tokens")
	fs.StringVarP(&c.Profile, "profile", "p", c.Profile, "Credential profile")
	fs.StringVarP(&c.Output, "output", "o", c.Output, "Output format (table, json, yaml)")
}
