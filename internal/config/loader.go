package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "EPIANN"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigParseError   = errors.New("config file could not be parsed")
	ErrConfigValidation   = errors.New("config validation failed")
)

// newViper builds a Viper instance with YAML file type, the EPIANN_ env
// prefix and a "." → "_" key replacer, so "annotator.buffer_size" resolves to
// EPIANN_ANNOTATOR_BUFFER_SIZE. Every key of Config is bound explicitly;
// AutomaticEnv alone does not reach nested keys during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v, reflect.TypeOf(Config{}), "")
	return v
}

// bindEnvKeys walks the mapstructure tags of t and binds each leaf key.
func bindEnvKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.String() != "time.Time" {
			bindEnvKeys(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges EPIANN_* overrides, applies
// defaults for unset fields and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %w: %s", ErrConfigFileNotFound, configPath)
		}
		return nil, fmt.Errorf("config: %w: %s: %v", ErrConfigParseError, configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from EPIANN_* environment variables and
// defaults only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional loads configPath when it is non-empty and falls back to
// LoadFromEnv otherwise. The CLI uses it for the optional --config flag.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}

	return cfg, nil
}

// Watch calls onChange with the re-parsed Config whenever configPath changes
// on disk. Only log settings are safe to apply at runtime; a change that fails
// to parse or validate is reported to onError and onChange is not called.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
