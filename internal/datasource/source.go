// Package datasource detects and loads flowchart sources. A flowchart can
// come from a JSON export or a SQLite database; the group definition file
// is always YAML and is loaded alongside it.
package datasource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceType identifies the kind of flowchart source.
type SourceType string

const (
	// SourceTypeJSON is a JSON flowchart export.
	SourceTypeJSON SourceType = "json"
	// SourceTypeSQLite is a SQLite database of blocks and edges.
	SourceTypeSQLite SourceType = "sqlite"
)

// sqliteMagic is the header every SQLite 3 file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// DetectSource classifies a flowchart file by extension, falling back to
// content sniffing for unknown extensions.
func DetectSource(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceTypeJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening flowchart source: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, _ := f.Read(header)
	if n >= len(sqliteMagic) && bytes.Equal(header, sqliteMagic) {
		return SourceTypeSQLite, nil
	}
	for _, b := range header[:n] {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return SourceTypeJSON, nil
		default:
			return "", fmt.Errorf("unrecognized flowchart source %s", path)
		}
	}
	return "", fmt.Errorf("unrecognized flowchart source %s", path)
}
