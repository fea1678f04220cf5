package metacard

// Names of the core attributes every metacard type carries.
const (
	ID                 = "id"
	Title              = "title"
	Created            = "created"
	Modified           = "modified"
	Effective          = "effective"
	Expiration         = "expiration"
	Location           = "location"
	Metadata           = "metadata"
	ContentType        = "metadata-content-type"
	ContentTypeVersion = "metadata-content-type-version"
	TargetNamespace    = "metadata-target-namespace"
	ResourceURI        = "resource-uri"
	ResourceSize       = "resource-size"
	Thumbnail          = "thumbnail"
	Description        = "description"
	PointOfContact     = "point-of-contact"
	Tags               = "metacard-tags"
)

// BasicTypeName is the name of the default metacard type.
const BasicTypeName = "ddf.metacard"

// BasicType is the type used for metacards that are created without an
// explicit type.
var BasicType = NewType(BasicTypeName,
	&AttributeDescriptor{Name: ID, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Title, Format: Formats.String, Indexed: true, Stored: true, Tokenized: true},
	&AttributeDescriptor{Name: Created, Format: Formats.Date, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Modified, Format: Formats.Date, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Effective, Format: Formats.Date, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Expiration, Format: Formats.Date, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Location, Format: Formats.Geometry, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Metadata, Format: Formats.XML, Indexed: true, Stored: true, Tokenized: true},
	&AttributeDescriptor{Name: ContentType, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: ContentTypeVersion, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: TargetNamespace, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: ResourceURI, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: ResourceSize, Format: Formats.String, Stored: true},
	&AttributeDescriptor{Name: Thumbnail, Format: Formats.Binary, Stored: true},
	&AttributeDescriptor{Name: Description, Format: Formats.String, Indexed: true, Stored: true, Tokenized: true},
	&AttributeDescriptor{Name: PointOfContact, Format: Formats.String, Indexed: true, Stored: true},
	&AttributeDescriptor{Name: Tags, Format: Formats.String, Indexed: true, Stored: true, MultiValued: true},
)

// AttributeDescriptor describes an attribute of a metacard type.
type AttributeDescriptor struct {
	Name        string `json:"name"`
	Format      Format `json:"format"`
	Indexed     bool   `json:"indexed,omitempty"`
	Stored      bool   `json:"stored,omitempty"`
	Tokenized   bool   `json:"tokenized,omitempty"`
	MultiValued bool   `json:"multi_valued,omitempty"`
}

// Type is a named schema describing which attributes a metacard may carry.
// A Type is immutable once created.
type Type struct {
	name        string
	descriptors []*AttributeDescriptor
	byName      map[string]*AttributeDescriptor
}

// NewType creates a new metacard type with the given name and attribute
// descriptors. If multiple descriptors share the same name, the last one wins.
func NewType(name string, descriptors ...*AttributeDescriptor) *Type {
	t := &Type{
		name:   name,
		byName: make(map[string]*AttributeDescriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if d == nil {
			continue
		}
		if _, exists := t.byName[d.Name]; exists {
			for i, existing := range t.descriptors {
				if existing.Name == d.Name {
					t.descriptors[i] = d
				}
			}
		} else {
			t.descriptors = append(t.descriptors, d)
		}
		t.byName[d.Name] = d
	}
	return t
}

// Name returns the name of the type.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Descriptor returns the descriptor of the named attribute or nil if the type
// does not define it.
func (t *Type) Descriptor(name string) *AttributeDescriptor {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Descriptors returns the attribute descriptors in definition order.
func (t *Type) Descriptors() []*AttributeDescriptor {
	if t == nil {
		return nil
	}
	res := make([]*AttributeDescriptor, len(t.descriptors))
	copy(res, t.descriptors)
	return res
}

// Extend creates a new type with the given name that contains all descriptors
// of this type followed by the additional descriptors.
func (t *Type) Extend(name string, additional ...*AttributeDescriptor) *Type {
	return NewType(name, append(t.Descriptors(), additional...)...)
}

func (t *Type) String() string {
	return t.Name()
}

// Find returns the first type in the given list whose name matches the given
// name exactly, or nil if there is no such type.
func Find(types []*Type, name string) *Type {
	for _, t := range types {
		if t != nil && t.name == name {
			return t
		}
	}
	return nil
}
