package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/thisisjab/pinotbroker/api"
	"github.com/thisisjab/pinotbroker/broker"
	"github.com/thisisjab/pinotbroker/function"
	"github.com/thisisjab/pinotbroker/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logger    LoggerConfig                 `yaml:"logger"`
	API       api.Config                   `yaml:"api"`
	Backend   BackendConfig                `yaml:"backend"`
	Functions []function.LuaFunctionConfig `yaml:"functions"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Type   string `yaml:"type"`
	Output string `yaml:"output"`
}

type BackendConfig struct {
	// Type is "clickhouse", or empty to answer literal-only queries only.
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

// Runtime holds everything built from a Config.
type Runtime struct {
	Logger *slog.Logger

	// LogLevel controls Logger and can be changed while running.
	LogLevel *slog.LevelVar

	Broker broker.Config
	API    api.Config

	// ClickHouse is the configured backend, nil when there is none.
	ClickHouse *storage.ClickHouseBackend
}

// Load reads and decodes the YAML file at path.
func Load(path string) (Config, error) {
	fileContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file content: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config file: %w", err)
	}

	return cfg, nil
}

func (cfg Config) Parse() (*Runtime, error) {
	level := new(slog.LevelVar)

	logger, err := parseLoggerConfig(cfg.Logger, level)
	if err != nil {
		return nil, fmt.Errorf("cannot create logger: %w", err)
	}

	rt := &Runtime{Logger: logger, LogLevel: level, API: cfg.API}

	rules := make([]function.Rule, len(cfg.Functions))
	for i, fc := range cfg.Functions {
		r, err := function.NewLuaRule(fc)
		if err != nil {
			return rt, fmt.Errorf("cannot create function `%s`: %w", fc.Name, err)
		}
		rules[i] = r
	}

	registry, err := function.NewRegistry(rules...)
	if err != nil {
		return rt, fmt.Errorf("cannot create function registry: %w", err)
	}
	rt.Broker.Registry = registry

	ch, err := parseBackendConfig(logger, cfg.Backend, broker.NewEvaluator(registry, nil))
	if err != nil {
		return rt, fmt.Errorf("cannot create backend: %w", err)
	}
	if ch != nil {
		rt.ClickHouse = ch
		rt.Broker.Backend = ch
	}

	return rt, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}

func parseLoggerConfig(cfg LoggerConfig, level *slog.LevelVar) (*slog.Logger, error) {
	l, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	level.Set(l)

	var w io.Writer
	switch cfg.Output {
	case "stdout", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	return newLogger(cfg.Type, w, level)
}

func newLogger(typ string, w io.Writer, level slog.Leveler) (*slog.Logger, error) {
	var handler slog.Handler

	switch typ {
	case "json", "":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	default:
		return nil, fmt.Errorf("invalid log type: %s", typ)
	}

	return slog.New(handler), nil
}

func parseBackendConfig(logger *slog.Logger, cfg BackendConfig, folder *broker.Evaluator) (*storage.ClickHouseBackend, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil

	case "clickhouse":
		var clickHouseConfig storage.ClickHouseConfig

		if err := remarshal(cfg.Config, &clickHouseConfig); err != nil {
			return nil, fmt.Errorf("cannot parse clickhouse backend config: %w", err)
		}

		b, err := storage.NewClickHouseBackend(clickHouseConfig, folder, logger)
		if err != nil {
			return nil, fmt.Errorf("cannot create clickhouse backend: %w", err)
		}

		return b, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}

// remarshal takes an input value, marshals it to YAML, and then unmarshals it into a new value of the same type.
// This is useful for converting generic interfaces (like map[string]any) into concrete struct types.
// The output parameter must be a pointer to the target type.
func remarshal(input any, output any) error {
	// Marshal the input to YAML
	yamlBytes, err := yaml.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	// Unmarshal the YAML into the output
	if err := yaml.Unmarshal(yamlBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal from YAML: %w", err)
	}

	return nil
}
