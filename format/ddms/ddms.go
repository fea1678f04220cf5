// Package ddms implements the catalog input transformer for DDMS 2.0
// (Department of Defense Discovery Metadata Specification) XML records.
package ddms

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/log-go"
	"github.com/eluv-io/utc-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/eluv-io/catalog-go/format/metacard"
)

var logger = log.Get("/eluvio/catalog/ddms")

const (
	// Marker is the literal prefix identifying a DDMS 2.0 record.
	Marker = "<ddms:Resource"
	// Namespace is the XML namespace of DDMS 2.0.
	Namespace = "http://metadata.dod.mil/mdr/ns/DDMS/2.0/"
	// TypeName is the name of the DDMS metacard type.
	TypeName = "ddms"
	// ContentTypeName and ContentTypeVersion are the content type values of
	// DDMS metacards.
	ContentTypeName    = "DDMS"
	ContentTypeVersion = "2.0"
)

// Names of the DDMS specific attributes.
const (
	Identifier     = "ddms.identifier"
	Keywords       = "ddms.keywords"
	Creator        = "ddms.creator"
	Publisher      = "ddms.publisher"
	Classification = "ddms.classification"
	Posted         = "ddms.posted"
)

// Type is the metacard type of DDMS metacards. It extends the basic metacard
// type with DDMS specific attributes.
var Type = metacard.BasicType.Extend(TypeName,
	&metacard.AttributeDescriptor{Name: Identifier, Format: metacard.Formats.String, Indexed: true, Stored: true},
	&metacard.AttributeDescriptor{Name: Keywords, Format: metacard.Formats.String, Indexed: true, Stored: true, MultiValued: true},
	&metacard.AttributeDescriptor{Name: Creator, Format: metacard.Formats.String, Indexed: true, Stored: true, MultiValued: true},
	&metacard.AttributeDescriptor{Name: Publisher, Format: metacard.Formats.String, Indexed: true, Stored: true, MultiValued: true},
	&metacard.AttributeDescriptor{Name: Classification, Format: metacard.Formats.String, Indexed: true, Stored: true},
	&metacard.AttributeDescriptor{Name: Posted, Format: metacard.Formats.Date, Indexed: true, Stored: true},
)

// IsDDMS20 returns true if the given metadata looks like a DDMS 2.0 record.
// This is a plain prefix check: no whitespace trimming, no namespace or
// well-formedness validation.
func IsDDMS20(metadata string) bool {
	return strings.HasPrefix(metadata, Marker)
}

// Transformer converts DDMS 2.0 XML records into metacards of Type.
type Transformer struct {
	log *log.Log
}

// NewTransformer creates a DDMS transformer. The package logger is used if l
// is nil.
func NewTransformer(l *log.Log) *Transformer {
	if l == nil {
		l = logger
	}
	return &Transformer{log: l}
}

// Transform parses the DDMS record read from r and creates a metacard of Type
// from it. The raw record is kept in the metadata attribute.
func (t *Transformer) Transform(r io.Reader) (*metacard.Metacard, error) {
	e := errors.Template("ddms.Transform", errors.K.Invalid)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, e(errors.K.IO, err, "reason", "failed to read input")
	}

	doc := etree.NewDocument()
	err = doc.ReadFromBytes(data)
	if err != nil {
		return nil, e(err, "reason", "invalid xml")
	}
	root := doc.Root()
	if root == nil || root.Space != "ddms" || root.Tag != "Resource" {
		return nil, e("reason", "not a ddms:Resource record")
	}

	mc := metacard.New(Type)
	mc.Set(metacard.Metadata, string(bytes.TrimSpace(data)))
	mc.Set(metacard.ContentType, ContentTypeName)
	mc.Set(metacard.ContentTypeVersion, ContentTypeVersion)
	mc.Set(metacard.TargetNamespace, Namespace)

	if el := root.FindElement("./ddms:identifier"); el != nil {
		setString(mc, Identifier, el.SelectAttrValue("ddms:value", ""))
	}
	setString(mc, metacard.Title, text(root.FindElement("./ddms:title")))
	setString(mc, metacard.Description, text(root.FindElement("./ddms:description")))

	if dates := root.FindElement("./ddms:dates"); dates != nil {
		t.setDate(mc, metacard.Created, dates.SelectAttrValue("ddms:created", ""))
		t.setDate(mc, Posted, dates.SelectAttrValue("ddms:posted", ""))
		t.setDate(mc, metacard.Expiration, dates.SelectAttrValue("ddms:validTil", ""))
	}

	setList(mc, Creator, producers(root.FindElements("./ddms:creator")))
	setList(mc, Publisher, producers(root.FindElements("./ddms:publisher")))

	var keywords []interface{}
	for _, kw := range root.FindElements("./ddms:subjectCoverage/ddms:Subject/ddms:keyword") {
		if v := strings.TrimSpace(kw.SelectAttrValue("ddms:value", "")); v != "" {
			keywords = append(keywords, v)
		}
	}
	setList(mc, Keywords, keywords)

	if sec := root.FindElement("./ddms:security"); sec != nil {
		setString(mc, Classification, sec.SelectAttrValue("ICISM:classification", ""))
	}

	if geom := t.location(root); geom != nil {
		mc.Set(metacard.Location, wkt.MarshalString(geom))
	}

	identifier, _ := mc.Get(Identifier)
	t.log.Debug("transformed ddms record",
		"title", mc.Title(),
		"identifier", identifier)
	return mc, nil
}

// location extracts the first geospatial coverage of the record: a bounding
// box as polygon or a gml:Point as point.
func (t *Transformer) location(root *etree.Element) orb.Geometry {
	for _, extent := range root.FindElements("./ddms:geospatialCoverage/ddms:GeospatialExtent") {
		if box := extent.FindElement("./ddms:boundingBox"); box != nil {
			west, ok1 := number(box.FindElement("./ddms:WestBL"))
			east, ok2 := number(box.FindElement("./ddms:EastBL"))
			south, ok3 := number(box.FindElement("./ddms:SouthBL"))
			north, ok4 := number(box.FindElement("./ddms:NorthBL"))
			if ok1 && ok2 && ok3 && ok4 {
				return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}.ToPolygon()
			}
			t.log.Debug("ignoring incomplete ddms bounding box")
		}
		if pos := extent.FindElement(".//gml:Point/gml:pos"); pos != nil {
			// gml:pos is "lat lon"
			fields := strings.Fields(pos.Text())
			if len(fields) == 2 {
				lat, err1 := strconv.ParseFloat(fields[0], 64)
				lon, err2 := strconv.ParseFloat(fields[1], 64)
				if err1 == nil && err2 == nil {
					return orb.Point{lon, lat}
				}
			}
			t.log.Debug("ignoring invalid gml:pos", "pos", pos.Text())
		}
	}
	return nil
}

// dateLayouts are the xs:dateTime, xs:date, xs:gYearMonth and xs:gYear forms
// allowed in ddms:dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

func (t *Transformer) setDate(mc *metacard.Metacard, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, value)
		if err == nil {
			mc.Set(name, utc.New(d))
			return
		}
	}
	t.log.Debug("ignoring invalid ddms date", "attribute", name, "value", value)
}

func producers(elements []*etree.Element) []interface{} {
	var res []interface{}
	for _, el := range elements {
		var parts []string
		for _, n := range el.FindElements(".//ddms:name") {
			if s := text(n); s != "" {
				parts = append(parts, s)
			}
		}
		for _, n := range el.FindElements(".//ddms:surname") {
			if s := text(n); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			res = append(res, strings.Join(parts, " "))
		}
	}
	return res
}

func text(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func number(el *etree.Element) (float64, bool) {
	f, err := strconv.ParseFloat(text(el), 64)
	return f, err == nil
}

func setString(mc *metacard.Metacard, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		mc.Set(name, value)
	}
}

func setList(mc *metacard.Metacard, name string, values []interface{}) {
	if len(values) > 0 {
		mc.Set(name, values)
	}
}
