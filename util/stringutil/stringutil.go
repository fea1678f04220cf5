package stringutil

import "fmt"

// AsString returns the given value as string. If the value is not a string or
// nil, it returns the empty string "".
func AsString(val interface{}) string {
	if val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}

// ToString converts the given value to a string, using the default conversion
// defined in fmt.Sprint(val). Returns the empty string "" if val is nil.
func ToString(val interface{}) string {
	if val == nil {
		return ""
	}
	s, ok := val.(string)
	if ok {
		return s
	}
	return fmt.Sprint(val)
}

// First returns the first non-empty string of the given strings.
func First(s ...string) string {
	for _, str := range s {
		if str != "" {
			return str
		}
	}
	return ""
}

// Abbreviate shortens s to at most max runes, replacing the tail with "..."
// if it had to be cut. Used to keep large documents out of log entries.
func Abbreviate(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// Stringer decorates any parameter-less function that returns a string as a
// fmt.Stringer interface.
//
// Useful in situations where string generation is costly and should only be
// performed when necessary, i.e. in logging statements.
type Stringer func() string

func (s Stringer) String() string {
	return s()
}
