package datasource

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

const flowchartJSON = `{
  "title": "sub_401000",
  "blocks": [
    {"id": 1, "start": 4198400, "end": 4198416},
    {"id": 2, "start": 4198416, "end": 4198432}
  ],
  "edges": [{"from": 1, "to": 2}, {"from": 2, "to": 2}]
}`

const groupsYAML = `
supergroups:
  - id: sg_main
    name: Main
    groups:
      - - {id: 1, start: 4198400, end: 4198416}
        - {id: 2, start: 4198416, end: 4198432}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParseJSON(t *testing.T) {
	fc, err := ParseJSON([]byte(flowchartJSON), "fallback")
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if fc.Title != "sub_401000" {
		t.Errorf("title = %q", fc.Title)
	}
	if fc.Size() != 2 {
		t.Errorf("size = %d", fc.Size())
	}
	if len(fc.Edges()) != 2 {
		t.Errorf("edges = %v", fc.Edges())
	}
	if fc.Entry() != 1 {
		t.Errorf("entry = %d", fc.Entry())
	}
}

func TestParseJSONErrors(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"blocks": []}`), "x"); err == nil {
		t.Errorf("empty flowchart accepted")
	}
	if _, err := ParseJSON([]byte(`{"blocks": [{"id": 1, "start": 16, "end": 8}]}`), "x"); err == nil {
		t.Errorf("inverted block range accepted")
	}
	if _, err := ParseJSON([]byte(`not json`), "x"); err == nil {
		t.Errorf("malformed document accepted")
	}
}

func TestDetectSource(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "fc.json", flowchartJSON)
	sniffPath := writeFile(t, dir, "fc.export", "  \n"+flowchartJSON)
	badPath := writeFile(t, dir, "fc.export2", "something else")

	if st, err := DetectSource(jsonPath); err != nil || st != SourceTypeJSON {
		t.Errorf("json by extension: %v %v", st, err)
	}
	if st, err := DetectSource(sniffPath); err != nil || st != SourceTypeJSON {
		t.Errorf("json by sniffing: %v %v", st, err)
	}
	if st, err := DetectSource(filepath.Join(dir, "x.sqlite")); err != nil || st != SourceTypeSQLite {
		t.Errorf("sqlite by extension: %v %v", st, err)
	}
	if _, err := DetectSource(badPath); err == nil {
		t.Errorf("garbage content classified")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	fcPath := writeFile(t, dir, "fc.json", flowchartJSON)
	gmPath := writeFile(t, dir, "groups.yaml", groupsYAML)

	fc, gm, err := Load(context.Background(), fcPath, gmPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fc.Size() != 2 || gm.NodeCount() != 2 {
		t.Errorf("loaded %d blocks, %d group nodes", fc.Size(), gm.NodeCount())
	}
	if loc := gm.FindNodeLoc(2); loc == nil || loc.SG.ID != "sg_main" {
		t.Errorf("lookups not initialized after load")
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	fcPath := writeFile(t, dir, "fc.json", flowchartJSON)

	if _, _, err := Load(context.Background(), fcPath, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("missing group file accepted")
	}
	if _, _, err := Load(context.Background(), filepath.Join(dir, "missing.json"), fcPath); err == nil {
		t.Errorf("missing flowchart accepted")
	}
}

func TestLoadSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fc.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("creating database: %v", err)
	}
	stmts := []string{
		`CREATE TABLE blocks (id INTEGER PRIMARY KEY, start INTEGER, end INTEGER)`,
		`CREATE TABLE edges (src INTEGER, dst INTEGER)`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT)`,
		`INSERT INTO blocks VALUES (1, 4198400, 4198416), (2, 4198416, 4198432)`,
		`INSERT INTO edges VALUES (1, 2)`,
		`INSERT INTO meta VALUES ('title', 'sub_sqlite')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("closing database: %v", err)
	}

	fc, err := LoadSQLite(dbPath)
	if err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	if fc.Title != "sub_sqlite" {
		t.Errorf("title = %q", fc.Title)
	}
	if fc.Size() != 2 || len(fc.Edges()) != 1 {
		t.Errorf("loaded %d blocks, %d edges", fc.Size(), len(fc.Edges()))
	}
}
