// Package archive unpacks skin packages and classifies their entries
// into the semantic components the installer acts on.
package archive

import (
	"path"
	"strings"
)

// Component names found at the root of a skin package
const (
	ComponentSkins   = "Skins"
	ComponentLayouts = "Layouts"
	ComponentPlugins = "Plugins"
)

// Entry is the classification of one archive member's path
type Entry struct {
	// Component is the first path segment when the entry is nested at
	// least two levels deep, empty otherwise
	Component string

	// Name is the first segment after the component, or the bare
	// filename for shallow entries
	Name string

	// Ext is the extension of the last segment, without the dot
	Ext string
}

// ParseEntry classifies an archive-relative path. It is a pure function
// of the path string: no I/O, no side effects.
//
// Both '/' and '\' act as separators since packages produced on Windows
// may carry either.
func ParseEntry(p string) Entry {
	var e Entry

	// empty trailing segments are kept on purpose: a directory entry
	// "Skins/Demo/" has three segments and classifies like its children
	segments := strings.Split(normalize(p), "/")
	switch {
	case len(segments) > 2:
		e.Component = segments[0]
		e.Name = segments[1]
		e.Ext = extension(segments[len(segments)-1])
	case len(segments) == 2:
		e.Name = segments[0]
		e.Ext = extension(segments[1])
	case len(segments) == 1:
		e.Name = segments[0]
	}

	return e
}

func normalize(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func extension(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}
