package geojson

import (
	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/log-go"

	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/util/stringutil"
)

// TypeProperty is the name of the feature property that holds the name of
// the metacard type to use.
const TypeProperty = "metacard-type"

// TypeResolver is the default MetacardFactory. It creates metacards of the
// registered type named in the TypeProperty of a feature, or of the default
// metacard type if the property is absent or empty.
type TypeResolver struct {
	log *log.Log
}

// NewTypeResolver creates a TypeResolver. The package logger is used if l is
// nil.
func NewTypeResolver(l *log.Log) *TypeResolver {
	if l == nil {
		l = logger
	}
	return &TypeResolver{log: l}
}

// BaseMetacard creates an empty metacard for the given feature properties:
//   - of the default type if the type property is absent or empty, or if
//     types is nil
//   - of the first type in types whose name equals the type property
//     (case-sensitive)
//
// Returns an error of kind NotExist if a type is named but not found in types.
func (r *TypeResolver) BaseMetacard(properties map[string]interface{}, types []*metacard.Type) (*metacard.Metacard, error) {
	typeName := stringutil.AsString(properties[TypeProperty])

	if typeName == "" || types == nil {
		r.log.Debug("metacard type not specified, using default", "default_type", metacard.BasicTypeName)
		return metacard.New(nil), nil
	}

	typ := metacard.Find(types, typeName)
	if typ == nil {
		return nil, errors.E("BaseMetacard", errors.K.NotExist,
			"reason", "metacard type "+typeName+" has not been registered",
			"metacard_type", typeName)
	}

	r.log.Debug("found registered metacard type", "metacard_type", typeName)
	return metacard.New(typ), nil
}
