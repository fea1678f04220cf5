// Package config defines the configuration of the catalog transformers and
// loads it from YAML (or JSON) files.
//
// Example:
//
//	log:
//	  level: debug
//	generate_ids: true
//	ddms:
//	  enabled: true
//	mappings:
//	  description: $.properties.summary
//	types:
//	  - name: image
//	    attributes:
//	      - name: resolution
//	        format: INTEGER
//	      - name: keywords
//	        format: STRING
//	        multi_valued: true
package config

import (
	"sort"

	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/log-go"
	"github.com/ghodss/yaml"
	uuid "github.com/satori/go.uuid"
	"github.com/spf13/afero"

	"github.com/eluv-io/catalog-go/format/ddms"
	"github.com/eluv-io/catalog-go/format/geojson"
	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/transform"
	"github.com/eluv-io/catalog-go/transform/geojsonddms"
	"github.com/eluv-io/catalog-go/util/codecutil"
	"github.com/eluv-io/catalog-go/util/jsonutil"
	"github.com/eluv-io/catalog-go/util/stringutil"
)

// Config is the transformer configuration.
type Config struct {
	Log         LogConfig         `json:"log"`
	DDMS        DDMSConfig        `json:"ddms"`
	GenerateIDs bool              `json:"generate_ids"`
	Mappings    map[string]string `json:"mappings,omitempty"`
	Types       []*TypeConfig     `json:"types,omitempty"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level   string `json:"level"`
	Handler string `json:"handler"`
}

// DDMSConfig configures the delegation of DDMS 2.0 metadata.
type DDMSConfig struct {
	Enabled bool `json:"enabled"`
}

// TypeConfig defines a metacard type.
type TypeConfig struct {
	Name string `json:"name"`
	// Extends is the name of the type whose attributes are inherited: the
	// basic metacard type if empty, no type at all if "none". Other types must
	// be defined before the types that extend them.
	Extends    string                          `json:"extends,omitempty"`
	Attributes []*metacard.AttributeDescriptor `json:"attributes,omitempty"`
}

// ExtendsNone is the value of TypeConfig.Extends for types that do not
// inherit any attributes.
const ExtendsNone = "none"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Handler: "text",
		},
		DDMS: DDMSConfig{
			Enabled: true,
		},
	}
}

// Load reads the configuration from the YAML or JSON file at path in the
// given file system. Settings absent from the file keep their default value.
func Load(fs afero.Fs, path string) (*Config, error) {
	e := errors.Template("config.Load", errors.K.IO, "path", path)

	bts, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, e(err)
	}
	return Parse(bts)
}

// Parse parses the configuration from YAML or JSON text.
func Parse(text []byte) (*Config, error) {
	e := errors.Template("config.Parse")

	var raw map[string]interface{}
	err := yaml.Unmarshal(text, &raw)
	if err != nil {
		return nil, e(errors.K.Invalid, err, "reason", "invalid yaml")
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	c := &Config{}
	err = codecutil.MapDecode(raw, c, codecutil.DecodeOptions{Strict: true})
	if err != nil {
		return nil, e(err)
	}
	err = jsonutil.SetDefaults(Default(), c, raw)
	if err != nil {
		return nil, e(err)
	}

	err = c.Validate()
	if err != nil {
		return nil, e(err)
	}
	return c, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	e := errors.Template("config.Validate", errors.K.Invalid)

	if c.Log.Level != "" {
		switch c.Log.Level {
		case "trace", "debug", "info", "warn", "error", "fatal":
		default:
			return e("reason", "invalid log level", "level", c.Log.Level)
		}
	}

	names := map[string]bool{}
	for i, tc := range c.Types {
		if tc == nil || tc.Name == "" {
			return e("reason", "type without name", "index", i)
		}
		if names[tc.Name] {
			return e(errors.K.Exist, "reason", "duplicate type", "metacard_type", tc.Name)
		}
		if tc.Extends != "" && tc.Extends != ExtendsNone && tc.Extends != metacard.BasicTypeName && !names[tc.Extends] {
			return e("reason", "extended type not defined before", "metacard_type", tc.Name, "extends", tc.Extends)
		}
		names[tc.Name] = true

		for _, ad := range tc.Attributes {
			if ad == nil || ad.Name == "" {
				return e("reason", "attribute without name", "metacard_type", tc.Name)
			}
			if _, err := metacard.ParseFormat(string(ad.Format)); err != nil {
				return e(err, "metacard_type", tc.Name, "attribute", ad.Name)
			}
		}
	}

	_, err := c.NewMappings()
	if err != nil {
		return e(err)
	}
	return nil
}

// NewRegistry creates a registry with the configured metacard types, in the
// order of their definition.
func (c *Config) NewRegistry() (*metacard.Registry, error) {
	reg := metacard.NewRegistry()
	defined := map[string]*metacard.Type{}
	for _, tc := range c.Types {
		var typ *metacard.Type
		switch tc.Extends {
		case "", metacard.BasicTypeName:
			typ = metacard.BasicType.Extend(tc.Name, tc.Attributes...)
		case ExtendsNone:
			typ = metacard.NewType(tc.Name, tc.Attributes...)
		default:
			parent, ok := defined[tc.Extends]
			if !ok {
				return nil, errors.E("config.NewRegistry", errors.K.Invalid,
					"reason", "extended type not defined before",
					"metacard_type", tc.Name,
					"extends", tc.Extends)
			}
			typ = parent.Extend(tc.Name, tc.Attributes...)
		}
		err := reg.Register(typ)
		if err != nil {
			return nil, errors.E("config.NewRegistry", err)
		}
		defined[tc.Name] = typ
	}
	return reg, nil
}

// NewMappings creates the configured attribute mappings, sorted by attribute
// name.
func (c *Config) NewMappings() ([]*geojson.Mapping, error) {
	return geojson.NewMappings(c.Mappings)
}

// NewIDGenerator returns a generator for random (v4) UUIDs if id generation
// is enabled, nil otherwise.
func (c *Config) NewIDGenerator() func() string {
	if !c.GenerateIDs {
		return nil
	}
	return func() string {
		return uuid.NewV4().String()
	}
}

// NewLog creates a logger as configured.
func (c *Config) NewLog() *log.Log {
	def := Default().Log
	return log.New(&log.Config{
		Level:   stringutil.First(c.Log.Level, def.Level),
		Handler: stringutil.First(c.Log.Handler, def.Handler),
	})
}

// NewTransformer creates the GeoJSON transformer described by the
// configuration, using the given logger (which may be nil).
func (c *Config) NewTransformer(l *log.Log) (*geojson.Transformer, error) {
	reg, err := c.NewRegistry()
	if err != nil {
		return nil, err
	}
	mappings, err := c.NewMappings()
	if err != nil {
		return nil, err
	}

	var delegate transform.InputTransformer
	if c.DDMS.Enabled {
		delegate = ddms.NewTransformer(l)
	}

	opts := []geojson.Option{
		geojson.WithMappings(mappings...),
		geojson.WithLogger(l),
	}
	if gen := c.NewIDGenerator(); gen != nil {
		opts = append(opts, geojson.WithIDGenerator(gen))
	}
	return geojsonddms.NewTransformer(reg, delegate, opts...), nil
}

// TypeNames returns the names of the configured types in sorted order.
func (c *Config) TypeNames() []string {
	res := make([]string, 0, len(c.Types))
	for _, tc := range c.Types {
		res = append(res, tc.Name)
	}
	sort.Strings(res)
	return res
}
