package geojsonddms_test

import (
	"io"
	"strings"
	"testing"

	"github.com/eluv-io/errors-go"
	"github.com/stretchr/testify/require"

	"github.com/eluv-io/catalog-go/format/ddms"
	"github.com/eluv-io/catalog-go/format/geojson"
	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/transform"
	"github.com/eluv-io/catalog-go/transform/geojsonddms"
	"github.com/eluv-io/catalog-go/util/testutil"
)

const ddmsRecord = `<ddms:Resource xmlns:ddms="http://metadata.dod.mil/mdr/ns/DDMS/2.0/" xmlns:ICISM="urn:us:gov:ic:ism:v2"><ddms:title>DDMS Title</ddms:title><ddms:security ICISM:classification="U"/></ddms:Resource>`

// recorder is a delegate that records its invocations.
type recorder struct {
	calls  int
	input  string
	result *metacard.Metacard
	err    error
	panic  bool
}

func (r *recorder) Transform(in io.Reader) (*metacard.Metacard, error) {
	r.calls++
	b, _ := io.ReadAll(in)
	r.input = string(b)
	if r.panic {
		panic("delegate blew up")
	}
	return r.result, r.err
}

var (
	typeA  = metacard.NewType("typeA")
	typeB  = metacard.NewType("typeB")
	typeA2 = metacard.NewType("typeA")
	ddmsMC = metacard.New(ddms.Type)
)

func TestDelegationNotTaken(t *testing.T) {
	tests := []struct {
		name     string
		metadata interface{}
	}{
		{name: "absent"},
		{name: "plain xml", metadata: "<xml></xml>"},
		{name: "leading whitespace", metadata: " <ddms:Resource/>"},
		{name: "xml declaration", metadata: `<?xml version="1.0"?><ddms:Resource/>`},
		{name: "not a string", metadata: 42.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{result: ddmsMC}
			props := map[string]interface{}{}
			if tt.metadata != nil {
				props[geojsonddms.MetadataProperty] = tt.metadata
			}
			mc, err := geojsonddms.NewSelector(rec, nil).BaseMetacard(props, []*metacard.Type{typeA})
			require.NoError(t, err)
			require.Equal(t, 0, rec.calls)
			require.Equal(t, metacard.BasicTypeName, mc.Type().Name())
		})
	}
}

func TestNoDelegate(t *testing.T) {
	props := map[string]interface{}{
		geojsonddms.MetadataProperty: ddmsRecord,
		geojsonddms.TypeNameProperty: "typeB",
	}
	mc, err := geojsonddms.NewSelector(nil, nil).BaseMetacard(props, []*metacard.Type{typeA, typeB})
	require.NoError(t, err)
	require.Same(t, typeB, mc.Type())
}

func TestDelegationSuccess(t *testing.T) {
	rec := &recorder{result: ddmsMC}
	props := map[string]interface{}{
		geojsonddms.MetadataProperty: "<ddms:Resource>anything",
		geojsonddms.TypeNameProperty: "unregistered",
	}
	mc, err := geojsonddms.NewSelector(rec, nil).BaseMetacard(props, []*metacard.Type{typeA})
	require.NoError(t, err)
	require.Same(t, ddmsMC, mc)
	require.Equal(t, "ddms", mc.Type().Name())
	require.Equal(t, 1, rec.calls)
	require.Equal(t, "<ddms:Resource>anything", rec.input)
}

func TestDelegationFailure(t *testing.T) {
	failures := []struct {
		name string
		rec  *recorder
	}{
		{name: "error", rec: &recorder{err: errors.E("ddms", errors.K.Invalid)}},
		{name: "no metacard", rec: &recorder{}},
		{name: "panic", rec: &recorder{panic: true}},
	}
	for _, f := range failures {
		t.Run(f.name, func(t *testing.T) {
			lg, handler := testutil.NewMemoryLog("debug")
			sel := geojsonddms.NewSelector(f.rec, lg)

			props := map[string]interface{}{geojsonddms.MetadataProperty: ddmsRecord}
			mc, err := sel.BaseMetacard(props, []*metacard.Type{typeA})
			require.NoError(t, err)
			require.Equal(t, metacard.BasicTypeName, mc.Type().Name())
			require.Equal(t, 1, f.rec.calls)
			require.NotNil(t, testutil.FindEntry(handler.Entries, "ddms transformation failed, resolving metacard type instead"))

			props[geojsonddms.TypeNameProperty] = "typeB"
			mc, err = sel.BaseMetacard(props, []*metacard.Type{typeA, typeB})
			require.NoError(t, err)
			require.Same(t, typeB, mc.Type())

			props[geojsonddms.TypeNameProperty] = "missing"
			_, err = sel.BaseMetacard(props, []*metacard.Type{typeA, typeB})
			require.Error(t, err)
			require.True(t, errors.IsKind(errors.K.NotExist, err), err)
		})
	}
}

func TestTypeResolution(t *testing.T) {
	registered := []*metacard.Type{typeA, typeB, typeA2}

	tests := []struct {
		name     string
		typeName interface{}
		types    []*metacard.Type
		want     *metacard.Type
		wantErr  bool
	}{
		{name: "exact match", typeName: "typeB", types: registered, want: typeB},
		{name: "first wins", typeName: "typeA", types: registered, want: typeA},
		{name: "case sensitive", typeName: "TYPEA", types: registered, wantErr: true},
		{name: "not registered", typeName: "typeC", types: registered, wantErr: true},
		{name: "empty registry", typeName: "typeA", types: []*metacard.Type{}, wantErr: true},
		{name: "empty name", typeName: "", types: registered, want: metacard.BasicType},
		{name: "absent name", types: registered, want: metacard.BasicType},
		{name: "nil registry", typeName: "typeA", want: metacard.BasicType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := map[string]interface{}{}
			if tt.typeName != nil {
				props[geojsonddms.TypeNameProperty] = tt.typeName
			}
			mc, err := geojsonddms.NewSelector(ddms.NewTransformer(nil), nil).BaseMetacard(props, tt.types)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, mc)
				require.True(t, errors.IsKind(errors.K.NotExist, err), err)
				require.Contains(t, err.Error(), tt.typeName)
				name, _ := errors.GetField(err, "metacard_type")
				require.Equal(t, tt.typeName, name)
				return
			}
			require.NoError(t, err)
			require.Same(t, tt.want, mc.Type())
		})
	}
}

func TestSelectorLogging(t *testing.T) {
	lg, handler := testutil.NewMemoryLog("trace")
	sel := geojsonddms.NewSelector(ddms.NewTransformer(lg), lg)

	_, err := sel.BaseMetacard(map[string]interface{}{geojsonddms.MetadataProperty: ddmsRecord}, nil)
	require.NoError(t, err)

	entry := testutil.FindEntry(handler.Entries, "checked metadata for ddms 2.0 marker")
	require.NotNil(t, entry)
	require.Equal(t, true, entry.Fields.Get("ddms"))
	require.Contains(t, testutil.Messages(handler.Entries), "created metacard from ddms metadata")
}

func TestSelectorLoggingWithoutDelegate(t *testing.T) {
	lg, handler := testutil.NewMemoryLog("trace")
	sel := geojsonddms.NewSelector(nil, lg)

	mc, err := sel.BaseMetacard(map[string]interface{}{geojsonddms.MetadataProperty: ddmsRecord}, nil)
	require.NoError(t, err)
	require.Equal(t, metacard.BasicTypeName, mc.Type().Name())

	entry := testutil.FindEntry(handler.Entries, "checked metadata for ddms 2.0 marker")
	require.NotNil(t, entry)
	require.Equal(t, true, entry.Fields.Get("ddms"))
	require.Equal(t, false, entry.Fields.Get("delegate"))
	require.NotContains(t, testutil.Messages(handler.Entries), "created metacard from ddms metadata")
}

func TestTransformerWithDDMS(t *testing.T) {
	custom := metacard.BasicType.Extend("custom")
	tr := geojsonddms.NewTransformer(
		metacard.NewRegistry(custom),
		ddms.NewTransformer(nil),
		geojson.WithIDGenerator(func() string { return "generated" }))

	js := `{"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [30.0, 10.0]},
		"properties": {"metacard-type": "custom", "metadata": ` + quote(ddmsRecord) + `}}`
	mc, err := tr.Transform(strings.NewReader(js))
	require.NoError(t, err)
	require.Equal(t, ddms.TypeName, mc.Type().Name())
	require.Equal(t, "DDMS Title", mc.Title())
	require.Equal(t, ddmsRecord, mc.Metadata())
	require.Equal(t, "POINT(30 10)", mc.Location())
	require.Equal(t, "generated", mc.ID())
	classification, _ := mc.Get(ddms.Classification)
	require.Equal(t, "U", classification)

	// a title property overrides the ddms title
	js = strings.Replace(js, `"metacard-type": "custom",`, `"metacard-type": "custom", "title": "GeoJSON Title",`, 1)
	mc, err = tr.Transform(strings.NewReader(js))
	require.NoError(t, err)
	require.Equal(t, "GeoJSON Title", mc.Title())
}

func TestTransformerWithoutDDMS(t *testing.T) {
	custom := metacard.BasicType.Extend("custom")
	tr := geojsonddms.NewTransformer(metacard.NewRegistry(custom), nil)

	js := `{"type": "Feature", "properties": {"metacard-type": "custom", "metadata": ` + quote(ddmsRecord) + `}}`
	mc, err := tr.Transform(strings.NewReader(js))
	require.NoError(t, err)
	require.Same(t, custom, mc.Type())
	require.Equal(t, ddmsRecord, mc.Metadata())

	js = `{"type": "Feature", "properties": {"metacard-type": "nope"}}`
	_, err = tr.Transform(strings.NewReader(js))
	require.Error(t, err)
	require.True(t, errors.IsKind(errors.K.NotExist, err), err)
	require.Contains(t, err.Error(), "nope")
}

func TestTransformerMalformedDDMS(t *testing.T) {
	tr := geojsonddms.NewTransformer(nil, ddms.NewTransformer(nil))

	js := `{"type": "Feature", "properties": {"title": "t", "metadata": "<ddms:Resource"}}`
	mc, err := tr.Transform(strings.NewReader(js))
	require.NoError(t, err)
	require.Equal(t, metacard.BasicTypeName, mc.Type().Name())
	require.Equal(t, "t", mc.Title())
}

func TestTryIsUsedForDelegate(t *testing.T) {
	// a typed nil transformer panics inside the delegate and is recovered
	var nilDDMS *ddms.Transformer
	res := transform.Try(nilDDMS, []byte(ddmsRecord))
	require.False(t, res.Ok())

	mc, err := geojsonddms.NewSelector(nilDDMS, nil).BaseMetacard(
		map[string]interface{}{geojsonddms.MetadataProperty: ddmsRecord}, nil)
	require.NoError(t, err)
	require.Equal(t, metacard.BasicTypeName, mc.Type().Name())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
