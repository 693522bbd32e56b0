package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultHost          = "127.0.0.1"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultMaxFileSize   = 50 * 1024 * 1024
	defaultHistoryLimit  = 10
	defaultHistoryPath   = ".docsearch/history.db"
	defaultContextRadius = 200
)

var defaultTextExtensions = []string{".txt", ".md"}

type Config struct {
	env    string
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	setDefaults(viperConfig)
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		env:    env,
		config: viperConfig,
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("ingest.max_file_size", defaultMaxFileSize)
	v.SetDefault("ingest.text_extensions", defaultTextExtensions)
	v.SetDefault("ingest.pdf_enabled", true)
	v.SetDefault("ingest.html_enabled", true)
	v.SetDefault("ingest.temp_dir", "")
	v.SetDefault("history.path", defaultHistoryPath)
	v.SetDefault("history.limit", defaultHistoryLimit)
	v.SetDefault("search.default_context_chars", defaultContextRadius)
}

func (c *Config) GetEnv() string {
	return c.env
}

// GetHost returns the interface the HTTP server listens on. It defaults to
// loopback so documents are only reachable from this machine.
func (c *Config) GetHost() string {
	host := c.config.GetString("LISTEN_HOST")
	if len(host) == 0 {
		host = c.config.GetString("server.host")
	}

	return host
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetLogLevel() string {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("log.level")
	}

	return level
}

// IsDebug reports whether the debug panel endpoint is enabled.
func (c *Config) IsDebug() bool {
	if value := c.config.GetString("DEBUG"); len(value) > 0 {
		return c.config.GetBool("DEBUG")
	}

	return c.config.GetBool("debug")
}

func (c *Config) GetMaxFileSize() int64 {
	maxFileSize := c.config.GetInt64("MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = c.config.GetInt64("ingest.max_file_size")
	}

	return maxFileSize
}

func (c *Config) GetTextExtensions() []string {
	return c.config.GetStringSlice("ingest.text_extensions")
}

func (c *Config) IsPDFEnabled() bool {
	return c.config.GetBool("ingest.pdf_enabled")
}

func (c *Config) IsHTMLEnabled() bool {
	return c.config.GetBool("ingest.html_enabled")
}

// GetTempDir returns the directory for scratch files created during PDF
// extraction. Empty means the OS default.
func (c *Config) GetTempDir() string {
	tempDir := c.config.GetString("TEMP_DIR")
	if len(tempDir) == 0 {
		tempDir = c.config.GetString("ingest.temp_dir")
	}

	return tempDir
}

func (c *Config) GetHistoryPath() string {
	historyPath := c.config.GetString("HISTORY_PATH")
	if len(historyPath) == 0 {
		historyPath = c.config.GetString("history.path")
	}

	return historyPath
}

func (c *Config) GetHistoryLimit() int {
	return c.config.GetInt("history.limit")
}

func (c *Config) GetDefaultContextChars() int {
	return c.config.GetInt("search.default_context_chars")
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
