// Package inifile reads and writes the host's INI-style configuration
// files.
//
// The host's settings files are usually UTF-8, but files touched by some
// editors (and by the host itself on Windows) are UTF-16. Load detects
// the encoding, remembers it, and write operations reuse it so a file
// never changes encoding across an install.
//
// The generic parser is used with quote and escape grammar disabled,
// matching how the host itself reads these files. The Variables section
// is additionally readable through a raw scan (see section.go) because
// variable values may contain characters a grammar-based tokenizer would
// mis-handle.
package inifile

import (
	"bytes"
	"os"

	"golang.org/x/text/encoding/unicode"
	ini "gopkg.in/ini.v1"

	"github.com/rminstall/rminstall/pkg/errors"
)

// Encoding identifies how a file's bytes were decoded
type Encoding int

const (
	// EncodingUTF8 is the primary 8-bit encoding
	EncodingUTF8 Encoding = iota

	// EncodingUTF16 is the wide-character fallback encoding
	EncodingUTF16
)

// loadOptions disables the quote and escape grammar so values keep
// their bytes exactly as written
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true, // values routinely end in '\' (Windows paths)
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
}

// File is a parsed configuration file together with the encoding it was
// read with
type File struct {
	*ini.File

	Path     string
	Encoding Encoding
}

// Load parses the file at path, attempting UTF-8 first and falling back
// to UTF-16. It fails with ErrConfigNotFound if the path does not exist
// and ErrConfigParse if both encoding attempts fail.
//
// Wide-character files are normally caught up front by the byte order
// mark and NUL-byte checks in loadText; the re-parse after a failed
// UTF-8 attempt is a last resort for byte streams those checks miss.
func Load(path string) (*File, error) {
	text, enc, err := loadText(path)
	if err != nil {
		return nil, err
	}

	parsed, err := ini.LoadSources(loadOptions, []byte(text))
	if err != nil {
		// The bytes may be wide characters that happened to survive the
		// 8-bit read; retry once as UTF-16 before giving up.
		if enc == EncodingUTF8 {
			if wide, decErr := decodeUTF16(readRaw(path)); decErr == nil {
				if parsed, err = ini.LoadSources(loadOptions, []byte(wide)); err == nil {
					return &File{File: parsed, Path: path, Encoding: EncodingUTF16}, nil
				}
			}
		}
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot parse config file").
			WithDetail("path", path)
	}

	return &File{File: parsed, Path: path, Encoding: enc}, nil
}

// loadText reads the file and decodes it to text, detecting UTF-16 via
// byte order mark or embedded NUL bytes
func loadText(path string) (string, Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", EncodingUTF8, errors.New(errors.ErrConfigNotFound, "config file not found").
				WithDetail("path", path)
		}
		return "", EncodingUTF8, errors.Wrap(err, errors.ErrIOFailure, "cannot read config file").
			WithDetail("path", path)
	}

	if isUTF16(data) {
		text, err := decodeUTF16(data)
		if err != nil {
			return "", EncodingUTF16, errors.Wrap(err, errors.ErrConfigParse, "cannot decode config file").
				WithDetail("path", path)
		}
		return text, EncodingUTF16, nil
	}

	return string(data), EncodingUTF8, nil
}

// isUTF16 reports whether the bytes look like a wide-character file:
// either a byte order mark or NUL bytes in the payload
func isUTF16(data []byte) bool {
	if len(data) >= 2 {
		if (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF) {
			return true
		}
	}
	return bytes.IndexByte(data, 0) >= 0
}

// decodeUTF16 converts UTF-16 bytes (BOM-respecting, little-endian
// default) to UTF-8 text
func decodeUTF16(data []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeUTF16 converts text to UTF-16LE bytes with a byte order mark
func encodeUTF16(text string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	return enc.Bytes([]byte(text))
}

func readRaw(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// writeText writes text back to path in the given encoding
func writeText(path, text string, enc Encoding) error {
	var data []byte
	if enc == EncodingUTF16 {
		encoded, err := encodeUTF16(text)
		if err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "cannot encode config file").
				WithDetail("path", path)
		}
		data = encoded
	} else {
		data = []byte(text)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot write config file").
			WithDetail("path", path)
	}
	return nil
}
