package codecutil

import (
	"encoding"
	"encoding/base64"
	"reflect"

	"github.com/eluv-io/errors-go"
	"github.com/mitchellh/mapstructure"
)

// MapUnmarshaler is implemented by types that decode themselves from a
// generic map.
type MapUnmarshaler interface {
	UnmarshalMap(m map[string]interface{}) error
}

var mapUnmarshaler = reflect.TypeOf((*MapUnmarshaler)(nil)).Elem()
var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// DecodeOptions controls MapDecode.
type DecodeOptions struct {
	// Strict makes keys without a matching destination field an error.
	Strict bool
	// Squash embedded structs as if their fields were part of the parent.
	Squash bool
}

// MapDecode decodes a parsed, generic source structure that was e.g.
// produced by unmarshaling JSON or YAML
//
//	var any interface{}
//	_ := yaml.Unmarshal(yamlText, &any)
//
// into the destination object dst (usually a pointer to a struct value). Any
// `json:...` tags defined on the destination structure's member fields will be
// used for decoding (just like when unmarshaling JSON text).
//
// The implementation uses github.com/mitchellh/mapstructure with the following
// special decoding hooks:
//   - decodes with the 'UnmarshalMap(m map[string]interface{}) error'
//     function if implemented by the destination object/field
//   - decodes with the 'UnmarshalText(text []byte) error' function if the
//     destination implements encoding.TextUnmarshaler
//   - decodes base64 strings into byte slices
func MapDecode(src interface{}, dst interface{}, opts ...DecodeOptions) error {
	var opt DecodeOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	cfg := &mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      dst,
		Squash:      opt.Squash,
		ErrorUnused: opt.Strict,
		DecodeHook:  decodeHook,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return errors.E("MapDecode", errors.K.Invalid, err)
	}
	err = decoder.Decode(src)
	if err != nil {
		return errors.E("MapDecode", errors.K.Invalid, err, "target", errors.TypeOf(dst))
	}
	return nil
}

var byteSliceType = reflect.TypeOf([]byte(nil))

func decodeHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	switch dt := data.(type) {
	case map[string]interface{}:
		t, ptr := resolve(t)
		if ptr.Implements(mapUnmarshaler) {
			instance := reflect.New(t)
			ret := instance.Interface()
			err := ret.(MapUnmarshaler).UnmarshalMap(dt)
			if err != nil {
				return nil, err
			}
			return ret, nil
		}
	case string:
		t, ptr := resolve(t)
		if ptr.Implements(textUnmarshaler) {
			instance := reflect.New(t)
			ret := instance.Interface()
			err := ret.(encoding.TextUnmarshaler).UnmarshalText([]byte(dt))
			if err != nil {
				return nil, err
			}
			return ret, nil
		} else if t == byteSliceType {
			return base64.StdEncoding.DecodeString(dt)
		}
	}
	return data, nil
}

func resolve(t reflect.Type) (reflect.Type, reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t, reflect.PtrTo(t)
}
