package jsonutil

import (
	"reflect"
	"strings"

	"github.com/eluv-io/errors-go"
)

// SetDefaults copies the default values of def to the target struct for all
// fields whose JSON name is not a key of the given raw document. This is
// typically the generic map a configuration was decoded from, so values that
// were explicitly set (even to their zero value) are kept. Nested struct
// fields that are present in raw as objects are completed the same way.
//
// Both target and def are expected to be structs (or pointers to structs).
func SetDefaults(def, target interface{}, raw map[string]interface{}) error {
	e := errors.Template("SetDefaults", errors.K.Invalid)

	tval := dereference(reflect.ValueOf(target))
	if tval.Kind() != reflect.Struct {
		return e("reason", "target not a struct", "type", errors.TypeOf(target))
	}
	dval := dereference(reflect.ValueOf(def))
	if dval.Kind() != reflect.Struct {
		return e("reason", "default not a struct", "type", errors.TypeOf(def))
	}

	setDefaults(dval, tval, raw)
	return nil
}

func setDefaults(dval, tval reflect.Value, raw map[string]interface{}) {
	targetFields := JsonFields(tval.Type())
	for name, defIndex := range JsonFields(dval.Type()) {
		targetIndex, ok := targetFields[name]
		if !ok {
			continue
		}
		field := tval.FieldByIndex(targetIndex)
		if !field.CanSet() {
			continue
		}
		defField := dval.FieldByIndex(defIndex)
		if rawVal, set := raw[name]; set {
			nested, isMap := rawVal.(map[string]interface{})
			if isMap && field.Kind() == reflect.Struct && defField.Type() == field.Type() {
				setDefaults(defField, field, nested)
			}
			continue
		}
		field.Set(defField)
	}
}

// JsonFields returns the field index (see reflect.StructField.Index) of every
// exported field of the given struct type, keyed by the name the json package
// would use for it. Fields tagged with `json:"-"` are skipped.
func JsonFields(typ reflect.Type) map[string][]int {
	res := map[string][]int{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			// unexported field
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		res[name] = field.Index
	}
	return res
}

func dereference(val reflect.Value) reflect.Value {
	for val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	return val
}
