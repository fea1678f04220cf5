package geojson

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/utc-go"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/eluv-io/catalog-go/format/metacard"
	"github.com/eluv-io/catalog-go/util/stringutil"
)

// DateLayouts are the layouts accepted for DATE attributes, tried in order.
// The first one is the ISO 8601 form used by the catalog's GeoJSON output:
// 2012-09-01T00:09:19.368+0000
var DateLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Convert converts a decoded JSON value to the representation used for
// attributes described by desc:
//
//	STRING, XML        string
//	GEOMETRY           WKT string (GeoJSON geometry objects are converted)
//	DATE               utc.UTC (ISO 8601 string or epoch milliseconds)
//	BINARY             []byte (base64 string)
//	BOOLEAN            bool
//	SHORT, INTEGER     int16, int32
//	LONG               int64
//	FLOAT, DOUBLE      float32, float64
//	OBJECT             unchanged
//
// Values of multi-valued attributes are returned as []interface{}. A nil value
// converts to nil.
func Convert(desc *metacard.AttributeDescriptor, val interface{}) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	if desc.MultiValued {
		arr, ok := val.([]interface{})
		if !ok {
			arr = []interface{}{val}
		}
		res := make([]interface{}, 0, len(arr))
		for _, v := range arr {
			if v == nil {
				continue
			}
			c, err := convertValue(desc, v)
			if err != nil {
				return nil, err
			}
			res = append(res, c)
		}
		return res, nil
	}
	return convertValue(desc, val)
}

func convertValue(desc *metacard.AttributeDescriptor, val interface{}) (res interface{}, err error) {
	switch desc.Format {
	case metacard.Formats.String, metacard.Formats.XML:
		res, err = toText(val)
	case metacard.Formats.Geometry:
		res, err = toGeometry(val)
	case metacard.Formats.Date:
		res, err = toDate(val)
	case metacard.Formats.Binary:
		res, err = toBinary(val)
	case metacard.Formats.Boolean:
		res, err = toBool(val)
	case metacard.Formats.Short:
		res, err = toInt(val, 16)
	case metacard.Formats.Integer:
		res, err = toInt(val, 32)
	case metacard.Formats.Long:
		res, err = toInt(val, 64)
	case metacard.Formats.Float:
		res, err = toFloat(val, 32)
	case metacard.Formats.Double:
		res, err = toFloat(val, 64)
	default:
		res = val
	}
	if err != nil {
		return nil, errors.E("convert", errors.K.Invalid, err,
			"attribute", desc.Name,
			"format", desc.Format,
			"value", stringutil.Abbreviate(stringutil.ToString(val), 64))
	}
	return res, nil
}

func toText(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case map[string]interface{}, []interface{}:
		bts, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(bts), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return stringutil.ToString(val), nil
}

func toGeometry(val interface{}) (string, error) {
	obj, ok := val.(map[string]interface{})
	if !ok {
		return toText(val)
	}
	bts, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	g, err := geojson.UnmarshalGeometry(bts)
	if err != nil {
		return "", errors.E("toGeometry", errors.K.Invalid, err, "reason", "invalid geojson geometry")
	}
	return wkt.MarshalString(g.Geometry()), nil
}

func toDate(val interface{}) (utc.UTC, error) {
	switch v := val.(type) {
	case float64:
		limit := math.Ldexp(1, 63)
		if math.IsNaN(v) || v < -limit || v >= limit {
			return utc.Zero, errors.E("toDate", errors.K.Invalid, "reason", "value out of range", "value", v)
		}
		return utc.New(time.UnixMilli(int64(v))), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range DateLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return utc.New(t), nil
			}
		}
		return utc.Zero, errors.E("toDate", errors.K.Invalid, "reason", "unsupported date format")
	}
	return utc.Zero, errors.E("toDate", errors.K.Invalid, "reason", "unsupported date value", "type", errors.TypeOf(val))
}

func toBinary(val interface{}) ([]byte, error) {
	s, ok := val.(string)
	if !ok {
		return nil, errors.E("toBinary", errors.K.Invalid, "reason", "expected base64 string", "type", errors.TypeOf(val))
	}
	return base64.StdEncoding.DecodeString(s)
}

func toBool(val interface{}) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	return false, errors.E("toBool", errors.K.Invalid, "reason", "unsupported boolean value", "type", errors.TypeOf(val))
}

func toInt(val interface{}, bitSize int) (interface{}, error) {
	var i int64
	switch v := val.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, errors.E("toInt", errors.K.Invalid, "reason", "not an integer")
		}
		limit := math.Ldexp(1, bitSize-1)
		if v < -limit || v >= limit {
			return nil, errors.E("toInt", errors.K.Invalid, "reason", "value out of range", "bits", bitSize)
		}
		i = int64(v)
	case string:
		var err error
		i, err = strconv.ParseInt(strings.TrimSpace(v), 10, bitSize)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.E("toInt", errors.K.Invalid, "reason", "unsupported integer value", "type", errors.TypeOf(val))
	}
	switch bitSize {
	case 16:
		return int16(i), nil
	case 32:
		return int32(i), nil
	}
	return i, nil
}

func toFloat(val interface{}, bitSize int) (interface{}, error) {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v), bitSize)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.E("toFloat", errors.K.Invalid, "reason", "unsupported number value", "type", errors.TypeOf(val))
	}
	if bitSize == 32 {
		return float32(f), nil
	}
	return f, nil
}
