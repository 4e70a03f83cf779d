package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the central typed configuration struct.
type Config struct {
	App          AppConfig
	Capabilities CapabilityConfig
	Docs         DocsConfig

	v *viper.Viper
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

// CapabilityConfig overrides what the process reports about itself.
type CapabilityConfig struct {
	AppType string // none | request-response | reactive
	// Libraries, when non-nil, replaces the libraries declared by linked drivers.
	Libraries []string
}

type DocsConfig struct {
	OutputDir string
}

// Binder maps the keys under a prefix onto the fields of target.
type Binder interface {
	Bind(prefix string, target any) error
}

type loadOptions struct {
	envFiles   []string
	configFile string
}

// Option tunes Load.
type Option func(*loadOptions)

// WithEnvFiles replaces the default ".env" file list.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.envFiles = files }
}

// WithConfigFile reads a YAML (or any viper-supported) file. Unlike .env
// files, a named config file must exist.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) { o.configFile = path }
}

// Load reads .env files (if present), an optional config file, and the
// environment. Environment variables win over the file: the key
// test.restdocs.uri-host is read from TEST_RESTDOCS_URI_HOST.
//
// Call once at bootstrap: cfg, err := config.Load()
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	for _, f := range o.envFiles {
		// .env may not exist in CI
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("app.name", "GoRestDocs")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.type", "request-response")
	v.SetDefault("docs.output-dir", "build/generated-snippets")

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", o.configFile, err)
		}
	}

	return &Config{
		App: AppConfig{
			Name:  v.GetString("app.name"),
			Env:   v.GetString("app.env"),
			Debug: v.GetBool("app.debug"),
		},
		Capabilities: CapabilityConfig{
			AppType:   v.GetString("app.type"),
			Libraries: stringList(v, "app.libraries"),
		},
		Docs: DocsConfig{
			OutputDir: v.GetString("docs.output-dir"),
		},
		v: v,
	}, nil
}

// Bind decodes every key under prefix that target declares (through its
// `mapstructure` tags, or lower-cased field names) into target. Values are
// weakly typed, so "9090" binds into an int. Keys under prefix that target
// does not declare are ignored, and so is everything outside prefix.
func (c *Config) Bind(prefix string, target any) error {
	keys, err := fieldKeys(target)
	if err != nil {
		return err
	}
	input := make(map[string]any, len(keys))
	for _, k := range keys {
		full := prefix + "." + k
		if c.v.IsSet(full) {
			input[k] = c.v.Get(full)
		}
	}
	if len(input) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("config: binding %s: %w", prefix, err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("config: binding %s: %w", prefix, err)
	}
	return nil
}

// Set overrides a key, mostly for tests and CLI flags.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// ── helpers ─────────────────────────────────────────────────────────────────

func fieldKeys(target any) ([]string, error) {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("config: bind target must be a pointer to a struct, got %T", target)
	}
	t = t.Elem()
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		keys = append(keys, name)
	}
	return keys, nil
}

// stringList reads key as a list. Environment values are comma separated.
func stringList(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	out := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
