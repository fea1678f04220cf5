// Package geojson implements the catalog input transformer for GeoJSON
// features.
//
// A feature is turned into a metacard in two steps: a MetacardFactory creates
// the (empty) base metacard from the feature's properties and the registered
// metacard types, then the transformer populates it with all properties that
// the metacard's type declares, the feature geometry (as WKT in the "location"
// attribute) and the results of optional attribute mappings.
package geojson

import (
	"io"
	"sort"

	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/log-go"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/util/jsonutil"
)

var logger = log.Get("/eluvio/catalog/geojson")

// MetacardFactory creates the base metacard for a feature with the given
// properties. types is the list of registered metacard types and may be nil.
type MetacardFactory interface {
	BaseMetacard(properties map[string]interface{}, types []*metacard.Type) (*metacard.Metacard, error)
}

// MetacardFactoryFunc adapts an ordinary function to the MetacardFactory
// interface.
type MetacardFactoryFunc func(properties map[string]interface{}, types []*metacard.Type) (*metacard.Metacard, error)

func (f MetacardFactoryFunc) BaseMetacard(properties map[string]interface{}, types []*metacard.Type) (*metacard.Metacard, error) {
	return f(properties, types)
}

// TypeProvider provides the registered metacard types. It is implemented by
// *metacard.Registry.
type TypeProvider interface {
	Types() []*metacard.Type
}

// StaticTypes is a fixed list of metacard types.
type StaticTypes []*metacard.Type

func (s StaticTypes) Types() []*metacard.Type {
	return s
}

// Option configures a Transformer.
type Option func(t *Transformer)

// WithMetacardFactory sets the factory for base metacards. Defaults to a
// TypeResolver.
func WithMetacardFactory(f MetacardFactory) Option {
	return func(t *Transformer) {
		if f != nil {
			t.factory = f
		}
	}
}

// WithMetacardFactoryOf sets a constructor for the factory of base metacards.
// It is called once with the transformer's logger after all options have been
// applied, unless WithMetacardFactory is also given.
func WithMetacardFactoryOf(fn func(l *log.Log) MetacardFactory) Option {
	return func(t *Transformer) {
		t.newFactory = fn
	}
}

// WithMappings adds attribute mappings that are evaluated against the entire
// GeoJSON document after the properties have been applied.
func WithMappings(mappings ...*Mapping) Option {
	return func(t *Transformer) {
		t.mappings = append(t.mappings, mappings...)
	}
}

// WithIDGenerator sets a function that generates ids for metacards that have
// none after transformation.
func WithIDGenerator(fn func() string) Option {
	return func(t *Transformer) {
		t.newID = fn
	}
}

// WithLogger sets the logger of the transformer.
func WithLogger(l *log.Log) Option {
	return func(t *Transformer) {
		if l != nil {
			t.log = l
		}
	}
}

// Transformer converts GeoJSON features into metacards.
type Transformer struct {
	types      TypeProvider
	factory    MetacardFactory
	newFactory func(l *log.Log) MetacardFactory
	mappings   []*Mapping
	newID      func() string
	log        *log.Log
}

// NewTransformer creates a GeoJSON transformer that resolves metacard types
// from the given provider. types may be nil, in which case all metacards are
// created with the default type.
func NewTransformer(types TypeProvider, opts ...Option) *Transformer {
	t := &Transformer{
		types: types,
		log:   logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.factory == nil && t.newFactory != nil {
		t.factory = t.newFactory(t.log)
	}
	if t.factory == nil {
		t.factory = NewTypeResolver(t.log)
	}
	return t
}

// Transform transforms the GeoJSON feature read from r into a metacard.
func (t *Transformer) Transform(r io.Reader) (*metacard.Metacard, error) {
	return t.TransformWithID(r, "")
}

// TransformWithID transforms the GeoJSON feature read from r into a metacard
// and sets the metacard's id to the given id unless it is empty.
func (t *Transformer) TransformWithID(r io.Reader, id string) (*metacard.Metacard, error) {
	e := errors.Template("geojson.Transform")

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, e(errors.K.IO, err, "reason", "failed to read input")
	}

	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, e(errors.K.Invalid, err, "reason", "input is not a geojson feature")
	}
	if feature.Properties == nil {
		return nil, e(errors.K.Invalid, "reason", "feature has no properties")
	}

	var types []*metacard.Type
	if t.types != nil {
		types = t.types.Types()
	}

	mc, err := t.factory.BaseMetacard(feature.Properties, types)
	if err != nil {
		return nil, e(err)
	}
	if mc == nil {
		return nil, e(errors.K.Internal, "reason", "no base metacard created")
	}

	err = t.applyProperties(mc, feature.Properties)
	if err != nil {
		return nil, e(err)
	}

	if feature.Geometry != nil {
		mc.Set(metacard.Location, wkt.MarshalString(feature.Geometry))
	}

	if len(t.mappings) > 0 {
		err = t.applyMappings(mc, data)
		if err != nil {
			return nil, e(err)
		}
	}

	if id != "" {
		mc.SetID(id)
	} else if mc.ID() == "" && t.newID != nil {
		mc.SetID(t.newID())
	}

	t.log.Debug("transformed geojson feature",
		"metacard_type", mc.Type().Name(),
		"id", mc.ID(),
		"attributes", len(mc.Names()))
	return mc, nil
}

func (t *Transformer) applyProperties(mc *metacard.Metacard, props map[string]interface{}) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	typ := mc.Type()
	for _, name := range names {
		desc := typ.Descriptor(name)
		if desc == nil {
			t.log.Trace("ignoring property not defined by metacard type",
				"property", name,
				"value", jsonutil.Stringer(props[name]),
				"metacard_type", typ.Name())
			continue
		}
		val, err := Convert(desc, props[name])
		if err != nil {
			return err
		}
		mc.Set(name, val)
	}
	return nil
}

func (t *Transformer) applyMappings(mc *metacard.Metacard, data []byte) error {
	doc, err := jsonutil.ParseAny(data)
	if err != nil {
		return err
	}
	typ := mc.Type()
	for _, m := range t.mappings {
		desc := typ.Descriptor(m.Attribute)
		if desc == nil {
			t.log.Debug("mapping target not defined by metacard type",
				"attribute", m.Attribute,
				"metacard_type", typ.Name())
			continue
		}
		val, found := m.Evaluate(doc, desc.MultiValued)
		if !found {
			t.log.Trace("mapping query found no value", "attribute", m.Attribute, "query", m.Query)
			continue
		}
		converted, err := Convert(desc, val)
		if err != nil {
			return errors.E("applyMappings", err, "query", m.Query)
		}
		mc.Set(m.Attribute, converted)
	}
	return nil
}
