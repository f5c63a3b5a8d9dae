// Package imgformat knows which image formats avatars may use and how to
// recognise them from a file name.
package imgformat

import (
	"path"
	"strings"
)

// Format is a supported avatar image format.
type Format int

const (
	Unknown Format = iota
	BMP
	PNG
	JPEG
	GIF
	WebP
	SVG
)

type info struct {
	ext         string
	contentType string
	suffixes    []string
}

var formats = map[Format]info{
	BMP:  {"bmp", "image/bmp", []string{".bmp"}},
	PNG:  {"png", "image/png", []string{".png"}},
	JPEG: {"jpg", "image/jpeg", []string{".jpg", ".jpeg"}},
	GIF:  {"gif", "image/gif", []string{".gif"}},
	WebP: {"webp", "image/webp", []string{".webp"}},
	SVG:  {"svg", "image/svg+xml", []string{".svg"}},
}

// All lists supported formats in a stable order.
var All = []Format{BMP, PNG, JPEG, GIF, WebP, SVG}

// Infer returns the format implied by the file name's extension, matched
// case-insensitively. ok is false for anything outside the allow-list.
func Infer(name string) (f Format, ok bool) {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return Unknown, false
	}
	for _, f := range All {
		for _, s := range formats[f].suffixes {
			if s == ext {
				return f, true
			}
		}
	}
	return Unknown, false
}

// Ext is the canonical extension (without dot) used in object keys.
func (f Format) Ext() string {
	return formats[f].ext
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if i, ok := formats[f]; ok {
		return i.contentType
	}
	return "application/octet-stream"
}

func (f Format) String() string {
	if i, ok := formats[f]; ok {
		return i.ext
	}
	return "unknown"
}

// AcceptString is the value for an HTML file input's accept attribute, e.g.
// ".bmp,.png,.jpg,.jpeg,.gif,.webp,.svg".
func AcceptString() string {
	var parts []string
	for _, f := range All {
		parts = append(parts, formats[f].suffixes...)
	}
	return strings.Join(parts, ",")
}
