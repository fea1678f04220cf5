package codecutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/util/codecutil"
)

type upper string

func (u *upper) UnmarshalText(text []byte) error {
	*u = upper(strings.ToUpper(string(text)))
	return nil
}

type pair struct {
	Key   string
	Value string
}

func (p *pair) UnmarshalMap(m map[string]interface{}) error {
	for k, v := range m {
		p.Key = k
		p.Value, _ = v.(string)
	}
	return nil
}

type testStruct struct {
	String string          `json:"string"`
	Int    int             `json:"int"`
	Format metacard.Format `json:"format"`
	Upper  upper           `json:"upper"`
	Bytes  []byte          `json:"bytes"`
	Pair   *pair           `json:"pair"`
}

func TestMapDecodeStruct(t *testing.T) {
	src := map[string]interface{}{
		"string": "a string",
		"int":    42.0,
		"format": "date",
		"upper":  "shout",
		"bytes":  "CA==",
		"pair":   map[string]interface{}{"k": "v"},
	}
	var dst testStruct
	err := codecutil.MapDecode(src, &dst)
	require.NoError(t, err)
	require.Equal(t, testStruct{
		String: "a string",
		Int:    42,
		Format: metacard.Formats.Date,
		Upper:  "SHOUT",
		Bytes:  []byte{8},
		Pair:   &pair{Key: "k", Value: "v"},
	}, dst)
}

func TestMapDecodeErrors(t *testing.T) {
	var dst testStruct
	err := codecutil.MapDecode(map[string]interface{}{"format": "nope"}, &dst)
	require.Error(t, err)

	err = codecutil.MapDecode(map[string]interface{}{"unknown": 1}, &dst)
	require.NoError(t, err)

	err = codecutil.MapDecode(map[string]interface{}{"unknown": 1}, &dst, codecutil.DecodeOptions{Strict: true})
	require.Error(t, err)
}
