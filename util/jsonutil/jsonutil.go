package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/eluv-io/errors-go"
)

// MarshalString marshals the given value as indented JSON and returns it
// as a string.
// The function panics if any errors occur.
func MarshalString(v interface{}) string {
	return string(Marshal(v))
}

// Marshal marshals the given value as indented JSON and returns it as a
// byte slice.
// The function panics if any errors occur.
func Marshal(v interface{}) []byte {
	res, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		err = errors.E("marshal json", errors.K.Invalid, err, "object_dump", spew.Sdump(v))
		panic("Failed to marshal json: " + err.Error())
	}
	return res
}

// MarshalCompactString marshals the given value as compact JSON (no indenting,
// no newlines) and returns it as a string.
// The function panics if any errors occur.
func MarshalCompactString(v interface{}) string {
	res, err := json.Marshal(v)
	if err != nil {
		err = errors.E("marshal json", errors.K.Invalid, err, "object_dump", spew.Sdump(v))
		panic("Failed to marshal json: " + err.Error())
	}
	return string(res)
}

// ParseAny parses the given JSON document into a generic structure made of
// map[string]interface{}, []interface{} and primitive values. Numbers are
// parsed as float64.
func ParseAny(jsonText []byte) (interface{}, error) {
	var res interface{}
	dec := json.NewDecoder(bytes.NewReader(jsonText))
	err := dec.Decode(&res)
	if err != nil {
		return nil, errors.E("unmarshal json", errors.K.Invalid, err, "json_size", len(jsonText))
	}
	if dec.More() {
		return nil, errors.E("unmarshal json", errors.K.Invalid, "reason", "trailing data after json document")
	}
	return res, nil
}

// Stringer returns a wrapper around val whose String() function will simply
// return val's JSON representation. If val is a 'func() interface{}', it will
// call that function and marshal its return value.
func Stringer(val interface{}) fmt.Stringer {
	return &stringer{val}
}

type stringer struct {
	val interface{}
}

func (s *stringer) String() string {
	val := s.val
	if fn, ok := val.(func() interface{}); ok {
		val = fn()
	}
	bts, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%#v", val)
	}
	return string(bts)
}

func (s *stringer) MarshalJSON() ([]byte, error) {
	val := s.val
	if fn, ok := val.(func() interface{}); ok {
		val = fn()
	}
	return json.Marshal(val)
}
