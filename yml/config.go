package yml

import (
	"bytes"
	"context"
)

type contextKey string

func (c contextKey) String() string {
	return "yml-context-key-" + string(c)
}

const configContextKey = contextKey("config")

type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

type Config struct {
	Indentation     int          // The indentation level of the document
	OutputFormat    OutputFormat // The output format to use when marshalling
	OriginalFormat  OutputFormat // The original input format
	TrailingNewline bool         // Whether the original document had a trailing newline
}

var defaultConfig = Config{
	Indentation:     2,
	OutputFormat:    OutputFormatYAML,
	OriginalFormat:  OutputFormatYAML,
	TrailingNewline: true,
}

func GetDefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

func ContextWithConfig(ctx context.Context, config *Config) context.Context {
	if config == nil {
		return ctx
	}

	return context.WithValue(ctx, configContextKey, config)
}

func GetConfigFromContext(ctx context.Context) *Config {
	cfg, ok := ConfigFromContext(ctx)
	if !ok {
		return GetDefaultConfig()
	}

	return cfg
}

// ConfigFromContext returns the config stored in ctx, if any.
func ConfigFromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, false
	}

	return cfg, true
}

// GetConfigFromDoc inspects raw document bytes to find the format and indentation they were written with.
func GetConfigFromDoc(data []byte) *Config {
	cfg := GetDefaultConfig()

	cfg.OutputFormat, cfg.Indentation = inspectData(data)
	cfg.OriginalFormat = cfg.OutputFormat
	cfg.TrailingNewline = len(data) > 0 && data[len(data)-1] == '\n'

	return cfg
}

func inspectData(data []byte) (OutputFormat, int) {
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))

	docFormat := OutputFormatYAML
	indentation := defaultConfig.Indentation

	foundFormat := false
	baseline := -1

	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}

		if !foundFormat {
			if trimmed[0] == '{' {
				docFormat = OutputFormatJSON
			}
			foundFormat = true
		}

		leading := len(line) - len(bytes.TrimLeft(line, " "))
		if baseline == -1 || leading < baseline {
			baseline = leading
			continue
		}

		if leading > baseline {
			return docFormat, leading - baseline
		}

		if i > 10 {
			break
		}
	}

	return docFormat, indentation
}
