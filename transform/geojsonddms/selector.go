// Package geojsonddms provides a GeoJSON input transformer that is aware of
// DDMS 2.0 metadata embedded in the features it transforms.
//
// If the "metadata" property of a feature holds a DDMS 2.0 record, the base
// metacard is created by a DDMS transformer. Otherwise, or if the DDMS
// transformation fails, the base metacard is created from the registered
// metacard type named in the "metacard-type" property.
package geojsonddms

import (
	"github.com/eluv-io/log-go"

	"github.com/eluv-io/catalog-go/format/ddms"
	"github.com/eluv-io/catalog-go/format/geojson"
	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/transform"
	"github.com/eluv-io/catalog-go/util/stringutil"
)

var logger = log.Get("/eluvio/catalog/geojsonddms")

const (
	// MetadataProperty is the feature property checked for DDMS metadata.
	MetadataProperty = "metadata"
	// TypeNameProperty is the feature property naming the metacard type.
	TypeNameProperty = geojson.TypeProperty
)

// Selector is a geojson.MetacardFactory that selects how the base metacard of
// a feature is created.
type Selector struct {
	ddms transform.InputTransformer
	base geojson.MetacardFactory
	log  *log.Log
}

// NewSelector creates a selector delegating DDMS 2.0 metadata to the given
// transformer. A nil transformer disables delegation. The package logger is
// used if l is nil.
func NewSelector(ddmsTransformer transform.InputTransformer, l *log.Log) *Selector {
	if l == nil {
		l = logger
	}
	return &Selector{
		ddms: ddmsTransformer,
		base: geojson.NewTypeResolver(l),
		log:  l,
	}
}

// BaseMetacard creates the base metacard for a feature with the given
// properties:
//   - the metacard produced by the DDMS transformer if the metadata property
//     starts with the DDMS 2.0 marker and the transformation succeeds
//   - otherwise a metacard of the type resolved by geojson.TypeResolver
//
// DDMS transformation failures are logged and never returned. An error of
// kind NotExist is returned if the named metacard type is not in types.
func (s *Selector) BaseMetacard(properties map[string]interface{}, types []*metacard.Type) (*metacard.Metacard, error) {
	if mc := s.fromMetadata(properties); mc != nil {
		return mc, nil
	}
	return s.base.BaseMetacard(properties, types)
}

func (s *Selector) fromMetadata(properties map[string]interface{}) *metacard.Metacard {
	metadata, _ := properties[MetadataProperty].(string)
	isDDMS := ddms.IsDDMS20(metadata)
	s.log.Trace("checked metadata for ddms 2.0 marker", "ddms", isDDMS, "delegate", s.ddms != nil)
	if !isDDMS || s.ddms == nil {
		return nil
	}

	res := transform.Try(s.ddms, []byte(metadata))
	if !res.Ok() {
		s.log.Debug("ddms transformation failed, resolving metacard type instead",
			"error", res.Err,
			"metadata", stringutil.Stringer(func() string { return stringutil.Abbreviate(metadata, 80) }))
		return nil
	}
	s.log.Debug("created metacard from ddms metadata", "metacard_type", res.Metacard.Type().Name())
	return res.Metacard
}

// NewTransformer creates a GeoJSON transformer whose base metacards are
// created by a Selector with the given DDMS transformer. A nil ddms
// transformer disables delegation.
func NewTransformer(types geojson.TypeProvider, ddmsTransformer transform.InputTransformer, opts ...geojson.Option) *geojson.Transformer {
	selector := geojson.WithMetacardFactoryOf(func(l *log.Log) geojson.MetacardFactory {
		return NewSelector(ddmsTransformer, l)
	})
	return geojson.NewTransformer(types, append([]geojson.Option{selector}, opts...)...)
}
