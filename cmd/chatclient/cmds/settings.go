package cmds

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/chatclient/pkg/apiclient"
	"github.com/go-go-golems/chatclient/pkg/session"
)

const envPrefix = "CHATCLIENT"

// Settings is the resolved configuration: flags over environment over the
// config file over defaults.
type Settings struct {
	BaseURL        string        `mapstructure:"base-url"`
	BasePath       string        `mapstructure:"base-path"`
	Timeout        time.Duration `mapstructure:"timeout"`
	AuthHeader     string        `mapstructure:"auth-header"`
	ResponseMode   string        `mapstructure:"response-mode"`
	SessionBackend string        `mapstructure:"session-backend"`
	SessionPath    string        `mapstructure:"session-path"`
	SessionKey     string        `mapstructure:"session-key"`
	RedisAddr      string        `mapstructure:"redis-addr"`
	NotifyBackend  string        `mapstructure:"notify-backend"`
	NotifyTopic    string        `mapstructure:"notify-topic"`
	RoutesFile     string        `mapstructure:"routes-file"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFormat      string        `mapstructure:"log-format"`
}

func addPersistentFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.String("config", "", "config file (default $HOME/.config/chatclient/config.yaml)")
	fs.String("base-url", "http://localhost:8000", "API server scheme and host")
	fs.String("base-path", apiclient.DefaultBasePath, "path prefix of every API call")
	fs.Duration("timeout", apiclient.DefaultTimeout, "per-call timeout")
	fs.String("auth-header", apiclient.DefaultAuthHeader, "header carrying the session token")
	fs.String("response-mode", "auto", "response handling: auto, envelope or raw")
	fs.String("session-backend", "file", "token storage: file, sqlite, redis or memory")
	fs.String("session-path", "", "token file or database (default under $HOME/.config/chatclient)")
	fs.String("session-key", session.DefaultKey, "storage slot holding the token")
	fs.String("redis-addr", "localhost:6379", "redis address for the redis session backend and pubsub notifications")
	fs.String("notify-backend", "terminal", "where failure notifications go: terminal, log or pubsub")
	fs.String("notify-topic", "", "pubsub topic for notifications")
	fs.String("routes-file", "", "YAML route table overriding the built-in routes")
	fs.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
}

// initViper binds root's persistent flags, CHATCLIENT_* environment variables
// and the optional config file into v.
func initViper(v *viper.Viper, root *cobra.Command) error {
	if err := v.BindPFlags(root.PersistentFlags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgFile := v.GetString("config")
	if cfgFile == "" {
		if dir, err := configDir(); err == nil {
			candidate := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
			}
		}
	}
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", cfgFile)
	}
	return nil
}

func loadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, errors.Wrap(err, "decode settings")
	}
	if s.Timeout <= 0 {
		return s, errors.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.SessionPath == "" {
		p, err := defaultSessionPath(s.SessionBackend)
		if err != nil {
			return s, err
		}
		s.SessionPath = p
	}
	return s, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".config", "chatclient"), nil
}

func defaultSessionPath(backend string) (string, error) {
	name := "session.json"
	switch strings.ToLower(backend) {
	case "redis", "memory":
		return "", nil
	case "sqlite":
		name = "session.db"
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
