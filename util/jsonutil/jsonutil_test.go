package jsonutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eluv-io/catalog-go/util/jsonutil"
)

func TestParseAny(t *testing.T) {
	v, err := jsonutil.ParseAny([]byte(`{"type":"Feature","properties":{"size":3}}`))
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{
		"type":       "Feature",
		"properties": map[string]interface{}{"size": 3.0},
	}, v)

	_, err = jsonutil.ParseAny([]byte(`{"type":`))
	require.Error(t, err)

	_, err = jsonutil.ParseAny([]byte(`{} {}`))
	require.Error(t, err)
}

func TestMarshal(t *testing.T) {
	v := map[string]interface{}{"a": 1}
	require.Equal(t, "{\n  \"a\": 1\n}", jsonutil.MarshalString(v))
	require.Equal(t, `{"a":1}`, jsonutil.MarshalCompactString(v))
	require.Panics(t, func() { jsonutil.MarshalString(func() {}) })
}

func TestStringer(t *testing.T) {
	require.Equal(t, `{"a":1}`, jsonutil.Stringer(map[string]int{"a": 1}).String())
	require.Equal(t, `"lazy"`, jsonutil.Stringer(func() interface{} { return "lazy" }).String())
}
