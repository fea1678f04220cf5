package metacard

import (
	"strings"

	"github.com/eluv-io/errors-go"
)

// Format is the format of an attribute value.
type Format string

// Formats defines the supported attribute formats.
var Formats = struct {
	String   Format
	Boolean  Format
	Date     Format
	Short    Format
	Integer  Format
	Long     Format
	Float    Format
	Double   Format
	Geometry Format
	Binary   Format
	XML      Format
	Object   Format
}{
	String:   "STRING",
	Boolean:  "BOOLEAN",
	Date:     "DATE",
	Short:    "SHORT",
	Integer:  "INTEGER",
	Long:     "LONG",
	Float:    "FLOAT",
	Double:   "DOUBLE",
	Geometry: "GEOMETRY",
	Binary:   "BINARY",
	XML:      "XML",
	Object:   "OBJECT",
}

var allFormats = []Format{
	Formats.String,
	Formats.Boolean,
	Formats.Date,
	Formats.Short,
	Formats.Integer,
	Formats.Long,
	Formats.Float,
	Formats.Double,
	Formats.Geometry,
	Formats.Binary,
	Formats.XML,
	Formats.Object,
}

// ParseFormat parses the given string as Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	for _, f := range allFormats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", errors.E("ParseFormat", errors.K.Invalid,
		"reason", "unknown attribute format",
		"format", s)
}

func (f Format) String() string {
	return string(f)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
