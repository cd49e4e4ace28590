package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	log "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/dotjs/closure/internal/compiler"
	"github.com/dotjs/closure/internal/request"
	"github.com/dotjs/closure/internal/useragent"
)

// DefaultPath is looked up in the working directory when no file is given.
const DefaultPath = "closure.hcl"

// Config is the content of a closure.hcl file. Every attribute is optional.
type Config struct {
	Endpoint  string `hcl:"endpoint,optional"`
	Timeout   string `hcl:"timeout,optional"`
	UserAgent string `hcl:"user_agent,optional"`
	Debug     bool   `hcl:"debug,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`

	Targets []Target `hcl:"target,block"`
}

// Target is a named bundle compiled by "closure build". Paths are used as
// written, relative to the working directory.
type Target struct {
	Name      string   `hcl:"name,label"`
	Sources   []string `hcl:"sources"`
	Outputs   []string `hcl:"outputs,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
	Debug     bool     `hcl:"debug,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Endpoint:  request.DefaultEndpoint,
		Timeout:   "60s",
		UserAgent: useragent.Default(),
		Debug:     false,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads an HCL configuration file on top of the defaults. The process
// environment is available in expressions as env.NAME.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return Parse(path, src)
}

// LoadOptional behaves like Load but returns the defaults when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Parse decodes configuration source. filename selects the syntax (.hcl or .json).
func Parse(filename string, src []byte) (*Config, error) {
	cfg := Default()

	if err := hclsimple.Decode(filename, src, evalContext(os.Environ()), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return cfg, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}

		env[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

// Validate checks values that HCL types cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an absolute http(s) URL", c.Endpoint)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: expected text or json", c.LogFormat)
	}

	return nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %w", err)
	}

	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}

	return d, nil
}

// CompilerOptions maps the configuration to compiler options.
func (c *Config) CompilerOptions(logger log.Ext1FieldLogger) (compiler.Options, error) {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return compiler.Options{}, err
	}

	opts := compiler.DefaultOptions()
	opts.Endpoint = c.Endpoint
	opts.Timeout = timeout
	opts.Debug = c.Debug
	opts.Logger = logger

	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}

	return opts, nil
}
