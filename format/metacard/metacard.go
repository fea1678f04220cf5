// Package metacard contains the catalog's record model: attribute formats and
// descriptors, metacard types, the type registry and metacards themselves.
package metacard

import (
	"encoding/json"
	"sort"

	"github.com/eluv-io/utc-go"
)

// Metacard is a catalog record: a set of attribute values associated with a
// metacard type.
//
// A Metacard is not safe for concurrent modification.
type Metacard struct {
	typ   *Type
	attrs map[string]interface{}
}

// New creates an empty metacard of the given type. The BasicType is used if
// typ is nil.
func New(typ *Type) *Metacard {
	if typ == nil {
		typ = BasicType
	}
	return &Metacard{
		typ:   typ,
		attrs: make(map[string]interface{}),
	}
}

// Type returns the metacard's type.
func (m *Metacard) Type() *Type {
	return m.typ
}

// Set sets the value of the named attribute. Setting a nil value removes the
// attribute.
func (m *Metacard) Set(name string, value interface{}) {
	if value == nil {
		delete(m.attrs, name)
		return
	}
	m.attrs[name] = value
}

// Get returns the value of the named attribute.
func (m *Metacard) Get(name string) (interface{}, bool) {
	val, ok := m.attrs[name]
	return val, ok
}

// Names returns the names of all set attributes in sorted order.
func (m *Metacard) Names() []string {
	res := make([]string, 0, len(m.attrs))
	for name := range m.attrs {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (m *Metacard) ID() string                 { return m.str(ID) }
func (m *Metacard) Title() string              { return m.str(Title) }
func (m *Metacard) Location() string           { return m.str(Location) }
func (m *Metacard) Metadata() string           { return m.str(Metadata) }
func (m *Metacard) ContentTypeName() string    { return m.str(ContentType) }
func (m *Metacard) ContentTypeVersion() string { return m.str(ContentTypeVersion) }
func (m *Metacard) ResourceURI() string        { return m.str(ResourceURI) }
func (m *Metacard) Description() string        { return m.str(Description) }
func (m *Metacard) Created() utc.UTC           { return m.date(Created) }
func (m *Metacard) Modified() utc.UTC          { return m.date(Modified) }

// Thumbnail returns the thumbnail bytes or nil if not set.
func (m *Metacard) Thumbnail() []byte {
	if b, ok := m.attrs[Thumbnail].([]byte); ok {
		return b
	}
	return nil
}

// SetID sets the metacard's id.
func (m *Metacard) SetID(id string) {
	m.Set(ID, id)
}

func (m *Metacard) str(name string) string {
	if s, ok := m.attrs[name].(string); ok {
		return s
	}
	return ""
}

func (m *Metacard) date(name string) utc.UTC {
	if d, ok := m.attrs[name].(utc.UTC); ok {
		return d
	}
	return utc.Zero
}

func (m *Metacard) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type       string                 `json:"type"`
		Attributes map[string]interface{} `json:"attributes"`
	}{
		Type:       m.typ.Name(),
		Attributes: m.attrs,
	})
}
