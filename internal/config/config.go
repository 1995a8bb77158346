package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

// Built-in values for every key, so a binary started without config.yaml still works.
var defaults = map[string]interface{}{
	"server.port":                "8080",
	"server.read_header_timeout": "15s",
	"server.read_timeout":        "15s",
	"server.write_timeout":       "10s",
	"server.idle_timeout":        "30s",
	"server.shutdown_timeout":    "10s",
	"server.public_dir":          "",
	"forecast.api_url":           "https://api.forecast.io/forecast",
	"forecast.timeout":           "1s",
	"client.proxy_url":           "http://localhost:8080",
	"client.locate_timeout":      "10s",
	"client.fetch_timeout":       "10s",
}

func initConfig() {
	once.Do(func() {
		for key, value := range defaults {
			viper.SetDefault(key, value)
		}
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getConfigDir()
		if err != nil {
			GetLogger().Infow("No config directory found, using built-in defaults", "error", err)
			return
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// getConfigDir is the project root during development, or the directory holding the
// executable when it ships with a config.yaml.
func getConfigDir() (string, error) {
	if root, err := getProjectRoot(); err == nil {
		return root, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		return "", err
	}
	return dir, nil
}

func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil || dur <= 0 {
		return def
	}
	return dur
}

func GetForecastApiUrl() string {
	initConfig()
	return strings.TrimRight(viper.GetString("forecast.api_url"), "/")
}

// GetForecastAPIKey reads the provider key from the environment, loading .env first when present.
func GetForecastAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("FORECAST_API_KEY")
}

// GetForecastTimeout bounds a single provider call. Defaults to 1s.
func GetForecastTimeout() time.Duration {
	return getDuration("forecast.timeout", time.Second)
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	if serverPort == "" {
		serverPort = "8080"
	}
	return serverPort
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration is GetServerTimeout parsed as a duration, falling back to def.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	return getDuration("server."+key, def)
}

func GetShutdownTimeout() time.Duration {
	return getDuration("server.shutdown_timeout", 10*time.Second)
}

// GetPublicDir returns a directory to serve static files from. Empty means the embedded assets.
func GetPublicDir() string {
	initConfig()
	return viper.GetString("server.public_dir")
}

func GetProxyURL() string {
	initConfig()
	return strings.TrimRight(viper.GetString("client.proxy_url"), "/")
}

func GetLocateTimeout() time.Duration {
	return getDuration("client.locate_timeout", 10*time.Second)
}

// GetFetchTimeout bounds one request from the command-line client to the proxy.
func GetFetchTimeout() time.Duration {
	return getDuration("client.fetch_timeout", 10*time.Second)
}

func GetAppInsightsInstrumentationKey() string {
	_ = godotenv.Load()
	return os.Getenv("APPLICATIONINSIGHTS_INSTRUMENTATION_KEY")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	viper.Reset()
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}
