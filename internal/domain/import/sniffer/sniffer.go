// Package sniffer inspects raw upload bytes to confirm the container format
// before a parser is chosen. Users rename files; magic numbers don't lie.
package sniffer

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is a supported import container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// FromExtension maps a filename to a format by its extension.
func FromExtension(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	default:
		return FormatUnknown
	}
}

// Detect identifies the container format from the leading bytes. XLSX is a
// zip archive, legacy XLS an OLE2 compound file; anything that decodes as
// text is assumed to be CSV.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, ole2Magic):
		return FormatXLS
	case looksTextual(data):
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// looksTextual samples the first kilobyte for valid UTF-8 free of control
// bytes other than whitespace.
func looksTextual(data []byte) bool {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return false
	}

	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
		// Drop a possibly truncated trailing rune.
		for len(sample) > 0 && !utf8.Valid(sample) {
			sample = sample[:len(sample)-1]
		}
	}
	if !utf8.Valid(sample) {
		return false
	}

	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}
