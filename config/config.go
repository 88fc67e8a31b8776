// Package config loads the build configuration: which API versions are published, where
// they come from, the webhook catalog and the search index targets.
//
// The production configuration is embedded. A config file replaces any top-level key it
// sets, and a few scalar settings can be overridden from the environment or a .env file.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/webhooks"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ErrInvalidConfig is returned when a loaded configuration fails validation.
	ErrInvalidConfig = errors.Error("invalid config")
	// ErrUnknownAPI is returned by Select when nothing matches.
	ErrUnknownAPI = errors.Error("unknown api")
)

const (
	EnvSiteDomain  = "DEVDOCS_SITE_DOMAIN"
	EnvAPIPath     = "DEVDOCS_API_PATH"
	EnvConcurrency = "DEVDOCS_CONCURRENCY"
)

//go:embed default.yaml
var defaultData []byte

type Config struct {
	// SiteDomain prefixes every search record URL.
	SiteDomain string `yaml:"site_domain"`
	// APIPath is the directory API descriptions are written to, as <type>/<version>.yaml.
	APIPath     string               `yaml:"api_path"`
	Concurrency int                  `yaml:"concurrency"`
	APIs        []API                `yaml:"apis"`
	Webhooks    webhooks.Catalog     `yaml:"webhooks"`
	Payloads    map[string]yaml.Node `yaml:"payloads"`
	Search      Search               `yaml:"search"`
}

// API is one published version of an API.
type API struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
	// Source is the schema endpoint; the version is passed as a query parameter.
	Source      string `yaml:"source"`
	Description string `yaml:"description"`
	// Additions holds top-level keys (servers, security, ...) set on the downloaded document.
	Additions yaml.Node `yaml:"additions"`
	// Webhooks enables webhook generation for this version.
	Webhooks bool `yaml:"webhooks"`
}

// ID is the type/version pair that identifies the API.
func (a API) ID() string {
	return a.Type + "/" + a.Version
}

// Path is where the API description lives below apiPath.
func (a API) Path(apiPath string) string {
	return DocumentPath(apiPath, a.Type, a.Version)
}

// DocumentPath is the file an API description of the given type and version is written to.
func DocumentPath(apiPath, apiType, version string) string {
	return filepath.Join(apiPath, apiType, version+".yaml")
}

type Search struct {
	APIs     []SearchTarget `yaml:"apis"`
	Webhooks SearchTarget   `yaml:"webhooks"`
	// HTML is the static index page path. Empty disables it.
	HTML string `yaml:"html"`
	// JSON is the record dump path. Empty disables it.
	JSON string `yaml:"json"`
}

type SearchTarget struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// Default returns the embedded production configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := decode(bytes.NewReader(defaultData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to load embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path on top of the embedded configuration. An empty path
// returns the embedded configuration.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := decode(f, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	err := yaml.NewDecoder(r).Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return ErrInvalidConfig.Wrap(err)
	}
	return nil
}

// ApplyEnv overrides settings from envFile and the process environment. Process variables
// win over the file. A missing envFile is not an error.
func (c *Config) ApplyEnv(envFile string) error {
	values := map[string]string{}

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return values[key]
	}

	if v := lookup(EnvSiteDomain); v != "" {
		c.SiteDomain = v
	}
	if v := lookup(EnvAPIPath); v != "" {
		c.APIPath = v
	}
	if v := lookup(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ErrInvalidConfig.Wrapf("%s must be a number, got %q", EnvConcurrency, v)
		}
		c.Concurrency = n
	}

	return nil
}

// WebhookPayloads returns the custom payloads keyed by event.
func (c *Config) WebhookPayloads() webhooks.Payloads {
	payloads := make(webhooks.Payloads, len(c.Payloads))
	for event, node := range c.Payloads {
		payloads[event] = &node
	}
	return payloads
}

// Validate checks the configuration is complete and consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.SiteDomain == "" {
		errs = append(errs, ErrInvalidConfig.Wrapf("site_domain is required"))
	}
	if c.APIPath == "" {
		errs = append(errs, ErrInvalidConfig.Wrapf("api_path is required"))
	}
	if c.Concurrency < 0 {
		errs = append(errs, ErrInvalidConfig.Wrapf("concurrency must not be negative"))
	}

	seen := map[string]struct{}{}
	for i, api := range c.APIs {
		if api.Type == "" || api.Version == "" || api.Source == "" {
			errs = append(errs, ErrInvalidConfig.Wrapf("apis[%d] needs type, version and source", i))
			continue
		}
		if _, ok := seen[api.ID()]; ok {
			errs = append(errs, ErrInvalidConfig.Wrapf("api %s is listed twice", api.ID()))
		}
		seen[api.ID()] = struct{}{}
	}

	if err := c.Webhooks.Validate(); err != nil {
		errs = append(errs, ErrInvalidConfig.Wrap(err))
	}
	for _, spec := range c.Webhooks {
		if spec.SchemaRef != "" {
			continue
		}
		if _, ok := c.Payloads[spec.Event]; !ok {
			errs = append(errs, ErrInvalidConfig.Wrap(webhooks.ErrMissingPayload.Wrapf("event %s", spec.Event)))
		}
	}

	for i, target := range c.Search.APIs {
		if target.Type == "" || target.Version == "" {
			errs = append(errs, ErrInvalidConfig.Wrapf("search.apis[%d] needs type and version", i))
		}
	}

	return errors.Join(errs...)
}

// Select returns the APIs matching only, given as "type" or "type/version". An empty only
// selects every API.
func (c *Config) Select(only string) ([]API, error) {
	if only == "" {
		return c.APIs, nil
	}

	apiType, version, hasVersion := strings.Cut(only, "/")

	selected := slices.DeleteFunc(slices.Clone(c.APIs), func(api API) bool {
		if api.Type != apiType {
			return true
		}
		return hasVersion && api.Version != version
	})

	if len(selected) == 0 {
		return nil, ErrUnknownAPI.Wrapf("%s", only)
	}

	return selected, nil
}
