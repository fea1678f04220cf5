package geojson

import (
	"context"
	"sort"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	"github.com/eluv-io/errors-go"
)

var queryLanguage = gval.NewLanguage(gval.Arithmetic(), jsonpath.Language())

// Mapping fills a metacard attribute with the result of a query against the
// entire GeoJSON document. Queries are JSONPath expressions
// ("$.properties.name") or slash separated paths ("/properties/name").
type Mapping struct {
	Attribute string
	Query     string
	eval      gval.Evaluable
}

// NewMapping creates a mapping for the given attribute and query.
func NewMapping(attribute, query string) (*Mapping, error) {
	e := errors.Template("NewMapping", errors.K.Invalid, "attribute", attribute, "query", query)
	if attribute == "" {
		return nil, e("reason", "empty attribute name")
	}
	if strings.TrimSpace(query) == "" {
		return nil, e("reason", "empty query")
	}

	native := query
	if strings.HasPrefix(query, "/") {
		native = slashToJSONPath(query)
	}
	eval, err := queryLanguage.NewEvaluable(native)
	if err != nil {
		return nil, e(err)
	}
	return &Mapping{
		Attribute: attribute,
		Query:     native,
		eval:      eval,
	}, nil
}

// NewMappings creates mappings from a map of attribute name to query. The
// mappings are sorted by attribute name.
func NewMappings(queries map[string]string) ([]*Mapping, error) {
	attrs := make([]string, 0, len(queries))
	for attr := range queries {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	res := make([]*Mapping, 0, len(attrs))
	for _, attr := range attrs {
		m, err := NewMapping(attr, queries[attr])
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, nil
}

// Evaluate runs the mapping's query against the given document. Query results
// that are lists are reduced to their first element unless multi is true.
// found is false if the query did not select anything.
func (m *Mapping) Evaluate(doc interface{}, multi bool) (val interface{}, found bool) {
	res, err := m.eval(context.Background(), doc)
	if err != nil || res == nil {
		// jsonpath reports unknown keys as errors
		return nil, false
	}
	if arr, ok := res.([]interface{}); ok && !multi {
		if len(arr) == 0 {
			return nil, false
		}
		return arr[0], true
	}
	return res, true
}

// slashToJSONPath converts a slash separated path to the '$.' notation:
// /properties/links/0/href --> $.properties.links[0].href
func slashToJSONPath(s string) string {
	sb := strings.Builder{}
	sb.WriteString("$")
	for _, seg := range strings.Split(strings.Trim(s, "/"), "/") {
		if seg == "" {
			continue
		}
		if strings.Contains("0123456789-*", seg[0:1]) {
			sb.WriteString("[")
			sb.WriteString(seg)
			sb.WriteString("]")
			continue
		}
		sb.WriteString(".")
		sb.WriteString(seg)
	}
	return sb.String()
}
