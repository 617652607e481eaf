package inifile

import (
	"strings"
	"unicode/utf16"

	"github.com/rminstall/rminstall/pkg/errors"
)

// VariablesSection is the section holding user-customizable skin values
const VariablesSection = "Variables"

// maxSectionUnits bounds the flat section buffer, matching the classic
// 16-bit signed-length ceiling of the platform facility this emulates.
// Sections larger than this are silently truncated; that is a documented
// limitation, not a bug.
const maxSectionUnits = 32767

// ReadVariablesSection reads the Variables section of the file at path
// verbatim and returns two equal-length ordered sequences of keys and
// values in UTF-16 code units, each null-terminated.
//
// The section is split literally on '=' and the buffer's embedded null
// terminators rather than tokenized, because values may legitimately
// contain characters (';', unbalanced quotes) that a grammar-based
// parser would treat as comments or escapes. An absent section yields
// empty sequences, not an error.
func ReadVariablesSection(path string) (keys, values [][]uint16, err error) {
	text, _, err := loadText(path)
	if err != nil {
		return nil, nil, err
	}

	buf := sectionBuffer(text, VariablesSection)
	keys, values = splitSectionBuffer(buf)
	return keys, values, nil
}

// sectionBuffer builds the flat wide-character buffer for a named
// section: one "key=value" record per entry, records separated by a
// single null, the whole buffer ended by a second consecutive null.
// The buffer is capped at maxSectionUnits; records that do not fit are
// dropped.
func sectionBuffer(text, section string) []uint16 {
	buf := make([]uint16, 0, 256)

	inSection := false
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]"))
			inSection = strings.EqualFold(name, section)
			continue
		}
		if !inSection || trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if !strings.Contains(trimmed, "=") {
			continue
		}

		record := utf16.Encode([]rune(trimmed))
		// leave room for this record's terminator and the final null
		if len(buf)+len(record)+2 > maxSectionUnits {
			break
		}
		buf = append(buf, record...)
		buf = append(buf, 0)
	}

	return append(buf, 0)
}

// splitSectionBuffer scans the flat buffer sequentially: the first '='
// of a record ends the key and starts the value, a null terminator ends
// the value and starts the next key, and a second consecutive null ends
// the section. Keys and values keep their null terminators so they can
// round-trip without text conversion.
func splitSectionBuffer(buf []uint16) (keys, values [][]uint16) {
	start := 0
	inKey := true
	wasNull := false

	for i, c := range buf {
		switch {
		case c == 0:
			if wasNull {
				return keys, values
			}
			wasNull = true
			if !inKey {
				values = append(values, withTerminator(buf[start:i]))
			}
			start = i + 1
			inKey = true
		case c == '=' && inKey:
			wasNull = false
			keys = append(keys, withTerminator(buf[start:i]))
			start = i + 1
			inKey = false
		default:
			wasNull = false
		}
	}

	return keys, values
}

func withTerminator(units []uint16) []uint16 {
	out := make([]uint16, 0, len(units)+1)
	out = append(out, units...)
	return append(out, 0)
}

// DecodeUnits converts a null-terminated UTF-16 code-unit sequence back
// to a string, dropping the terminator.
func DecodeUnits(units []uint16) string {
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}

// WriteVariables splices the given key/value pairs into the Variables
// section of the file at path. Existing keys are rewritten in place,
// new keys are appended to the section, and the section is created if
// absent. Everything outside the section is left untouched, and the
// file is written back in the encoding it was read with.
func WriteVariables(path string, keys, values [][]uint16) error {
	if len(keys) != len(values) {
		return errors.New(errors.ErrInvalidInput, "keys and values must have equal length")
	}
	if len(keys) == 0 {
		return nil
	}

	text, enc, err := loadText(path)
	if err != nil {
		return err
	}

	crlf := strings.Contains(text, "\r\n")
	lines := splitLines(text)

	secStart, secEnd := sectionBounds(lines, VariablesSection)
	if secStart < 0 {
		// create the section at the end of the file
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, "["+VariablesSection+"]")
		secStart = len(lines)
		secEnd = len(lines)
	}

	for i := range keys {
		key := DecodeUnits(keys[i])
		value := DecodeUnits(values[i])
		record := key + "=" + value

		if idx := findKeyLine(lines, secStart, secEnd, key); idx >= 0 {
			lines[idx] = record
		} else {
			lines = append(lines[:secEnd], append([]string{record}, lines[secEnd:]...)...)
			secEnd++
		}
	}

	sep := "\n"
	if crlf {
		sep = "\r\n"
	}
	return writeText(path, strings.Join(lines, sep), enc)
}

// sectionBounds returns the half-open line range of a section's body,
// or (-1, -1) if the section is absent
func sectionBounds(lines []string, section string) (int, int) {
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "[") {
			continue
		}
		if start >= 0 {
			return start, i
		}
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]"))
		if strings.EqualFold(name, section) {
			start = i + 1
		}
	}
	if start >= 0 {
		return start, len(lines)
	}
	return -1, -1
}

// findKeyLine locates the line defining key within the given range,
// matching the key case-insensitively on a literal split at the first '='
func findKeyLine(lines []string, start, end int, key string) int {
	for i := start; i < end && i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(trimmed[:eq]), strings.TrimSpace(key)) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
