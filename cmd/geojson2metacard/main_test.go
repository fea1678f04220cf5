package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/eluv-io/errors-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const feature = `{"type": "Feature",
	"geometry": {"type": "Point", "coordinates": [30.0, 10.0]},
	"properties": {"metacard-type": "image", "title": "myTitle", "resolution": 640}}`

const catalogConfig = `
log:
  level: warn
types:
  - name: image
    attributes:
      - name: resolution
        format: INTEGER
`

type output struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes"`
}

func parseOutput(t *testing.T, s string) []output {
	var res []output
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		var o output
		require.NoError(t, json.Unmarshal([]byte(line), &o), line)
		res = append(res, o)
	}
	return res
}

func newFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/a.geojson", []byte(feature), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/b.geojson", []byte(strings.Replace(feature, "myTitle", "other", 1)), 0644))
	require.NoError(t, afero.WriteFile(fs, "/catalog.yaml", []byte(catalogConfig), 0644))
	return fs
}

func TestRunFiles(t *testing.T) {
	fs := newFs(t)
	stdout := &bytes.Buffer{}

	err := run(fs, []string{"-config", "/catalog.yaml", "/in/a.geojson", "/in/b.geojson"}, nil, stdout)
	require.NoError(t, err)

	res := parseOutput(t, stdout.String())
	require.Len(t, res, 2)
	require.Equal(t, "image", res[0].Type)
	require.Equal(t, "myTitle", res[0].Attributes["title"])
	require.Equal(t, 640.0, res[0].Attributes["resolution"])
	require.Equal(t, "POINT(30 10)", res[0].Attributes["location"])
	require.Equal(t, "other", res[1].Attributes["title"])
}

func TestRunStdin(t *testing.T) {
	stdout := &bytes.Buffer{}
	js := `{"type": "Feature", "properties": {"title": "t"}}`

	err := run(afero.NewMemMapFs(), []string{"-id", "myId"}, strings.NewReader(js), stdout)
	require.NoError(t, err)

	res := parseOutput(t, stdout.String())
	require.Len(t, res, 1)
	require.Equal(t, "ddf.metacard", res[0].Type)
	require.Equal(t, "myId", res[0].Attributes["id"])
}

func TestRunOutDir(t *testing.T) {
	fs := newFs(t)
	stdout := &bytes.Buffer{}

	err := run(fs, []string{"-config", "/catalog.yaml", "-out-dir", "/out", "/in/a.geojson"}, nil, stdout)
	require.NoError(t, err)
	require.Empty(t, stdout.String())

	bts, err := afero.ReadFile(fs, "/out/a.json")
	require.NoError(t, err)
	res := parseOutput(t, string(bts))
	require.Equal(t, "image", res[0].Type)

	// no output file for failed transformations
	require.NoError(t, afero.WriteFile(fs, "/in/bad.geojson", []byte(`{"type": "Feature", `), 0644))
	err = run(fs, []string{"-out-dir", "/out", "/in/bad.geojson"}, nil, stdout)
	require.Error(t, err)
	exists, err := afero.Exists(fs, "/out/bad.json")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantKind errors.Kind
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantKind: errors.K.Invalid},
		{name: "id with many files", args: []string{"-id", "x", "/in/a.geojson", "/in/b.geojson"}, wantKind: errors.K.Invalid},
		{name: "missing config", args: []string{"-config", "/none.yaml", "/in/a.geojson"}, wantKind: errors.K.IO},
		{name: "missing input", args: []string{"-config", "/catalog.yaml", "/in/none.geojson"}, wantKind: errors.K.IO},
		{name: "unregistered type", args: []string{"/in/a.geojson"}, wantKind: errors.K.NotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(newFs(t), tt.args, nil, &bytes.Buffer{})
			require.Error(t, err)
			require.True(t, errors.IsKind(tt.wantKind, err), err)
		})
	}
}
