// Package config loads shredder settings from flags, SHREDDER_* environment
// variables and an optional YAML file through viper.
package config

import (
	"encoding"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	aesgo "github.com/Shayhha/FileShredder/aes-go"
	"github.com/Shayhha/FileShredder/shred"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const EnvPrefix = "SHREDDER"

type Config struct {
	Engine  Engine  `mapstructure:"engine" yaml:"engine"`
	Wipe    Wipe    `mapstructure:"wipe" yaml:"wipe"`
	Cipher  Cipher  `mapstructure:"cipher" yaml:"cipher"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

type Engine struct {
	// ChunkSize accepts plain byte counts or sizes such as "64k" or "1MB".
	ChunkSize int            `mapstructure:"chunkSize" yaml:"chunkSize"`
	Strategy  shred.Strategy `mapstructure:"strategy" yaml:"strategy"`
}

type Wipe struct {
	Passes int  `mapstructure:"passes" yaml:"passes"`
	Remove bool `mapstructure:"remove" yaml:"remove"`
}

type Cipher struct {
	Mode aesgo.Mode `mapstructure:"mode" yaml:"mode"`
}

type Logging struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("engine.chunkSize", shred.MaxChunkSize)
	v.SetDefault("engine.strategy", shred.Sequential.String())
	v.SetDefault("wipe.passes", 3)
	v.SetDefault("wipe.remove", false)
	v.SetDefault("cipher.mode", aesgo.CTR.String())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	return v
}

// Load reads the optional config file named by path and unmarshals the
// merged settings.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	var c Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		textUnmarshalerHook,
		byteSizeDecodeHook,
	))
	if err := v.Unmarshal(&c, hooks); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Engine.ChunkSize < 1 || c.Engine.ChunkSize > shred.MaxChunkSize {
		return errors.Errorf("engine.chunkSize must be between 1 and %d, got %d", shred.MaxChunkSize, c.Engine.ChunkSize)
	}
	if c.Wipe.Passes < 1 {
		return errors.Errorf("wipe.passes must be positive, got %d", c.Wipe.Passes)
	}
	if c.Cipher.Mode.Padded() {
		return errors.Wrapf(shred.ErrUnsupportedMode, "cipher.mode %s", c.Cipher.Mode)
	}
	return nil
}

// EngineOptions maps the engine section onto shred options.
func (c Config) EngineOptions() []shred.Option {
	return []shred.Option{
		shred.WithChunkSize(c.Engine.ChunkSize),
		shred.WithStrategy(c.Engine.Strategy),
	}
}

// YAML renders the settings in the format Load accepts.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encoding config")
	}
	return out, nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// textUnmarshalerHook decodes strings into types such as shred.Strategy that
// parse themselves.
func textUnmarshalerHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || !reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return data, nil
	}
	v := reflect.New(t)
	if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(data.(string))); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}

var byteSize = regexp.MustCompile(`^(?P<size>[0-9]+)\s*(?i)(?P<unit>(k|m))b?$`)

// byteSizeDecodeHook turns "64k" or "1MB" into a byte count.
func byteSizeDecodeHook(f reflect.Kind, t reflect.Kind, data interface{}) (interface{}, error) {
	if f != reflect.String || t != reflect.Int {
		return data, nil
	}
	raw := data.(string)
	if !byteSize.MatchString(raw) {
		return data, nil
	}

	size, err := strconv.Atoi(byteSize.ReplaceAllString(raw, "${size}"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid size %q", raw)
	}
	switch strings.ToLower(byteSize.ReplaceAllString(raw, "${unit}")) {
	case "m":
		size <<= 10
		fallthrough
	case "k":
		size <<= 10
	}
	return size, nil
}
