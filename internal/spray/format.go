package spray

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceFormat is the text encoding of a JSON source file. The numeric value
// is the key FileSpray expects in sourceFormat.
type SourceFormat int

const (
	FormatUnset SourceFormat = iota
	FormatASCII
	FormatUTF8
	FormatUTF8N
	FormatUTF16
	FormatUTF16LE
	FormatUTF16BE
	FormatUTF32
	FormatUTF32LE
	FormatUTF32BE
)

var formatNames = [...]string{
	FormatUnset:   "",
	FormatASCII:   "ASCII",
	FormatUTF8:    "UTF-8",
	FormatUTF8N:   "UTF-8N",
	FormatUTF16:   "UTF-16",
	FormatUTF16LE: "UTF-16LE",
	FormatUTF16BE: "UTF-16BE",
	FormatUTF32:   "UTF-32",
	FormatUTF32LE: "UTF-32LE",
	FormatUTF32BE: "UTF-32BE",
}

// SourceFormats lists the selectable encodings in display order.
func SourceFormats() []SourceFormat {
	out := make([]SourceFormat, 0, len(formatNames)-1)
	for f := FormatASCII; f <= FormatUTF32BE; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is one of the nine encodings.
func (f SourceFormat) Valid() bool {
	return f >= FormatASCII && f <= FormatUTF32BE
}

func (f SourceFormat) String() string {
	if !f.Valid() {
		return ""
	}
	return formatNames[f]
}

// Key returns the wire key ("1".."9"), or "" when unset.
func (f SourceFormat) Key() string {
	if !f.Valid() {
		return ""
	}
	return strconv.Itoa(int(f))
}

// ParseSourceFormat accepts a wire key or an encoding name.
func ParseSourceFormat(s string) (SourceFormat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatUnset, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		f := SourceFormat(n)
		if f.Valid() {
			return f, nil
		}
		return FormatUnset, fmt.Errorf("unknown source format key %q", s)
	}
	for _, f := range SourceFormats() {
		if strings.EqualFold(f.String(), s) {
			return f, nil
		}
	}
	return FormatUnset, fmt.Errorf("unknown source format %q", s)
}
