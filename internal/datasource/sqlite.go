package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/cfgview/pkg/model"
)

// SQLiteReader provides read access to a flowchart database with a
// blocks(id, start, end) table and an edges(src, dst) table. An optional
// meta(key, value) table can carry the flowchart title.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a flowchart database read-only.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadFlowchart reads every block and edge from the database.
func (r *SQLiteReader) LoadFlowchart() (*model.Flowchart, error) {
	fc := model.NewFlowchart(r.title())

	rows, err := r.db.Query(`SELECT id, start, end FROM blocks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b model.BasicBlock
		if err := rows.Scan(&b.ID, &b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		fc.AddBlock(b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}
	if fc.Size() == 0 {
		return nil, fmt.Errorf("flowchart %s has no blocks", r.path)
	}

	erows, err := r.db.Query(`SELECT src, dst FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var from, to int
		if err := erows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		fc.AddEdge(from, to)
	}
	if err := erows.Err(); err != nil {
		return nil, fmt.Errorf("reading edges: %w", err)
	}

	return fc, nil
}

// title reads the flowchart title from the optional meta table, falling
// back to the database path.
func (r *SQLiteReader) title() string {
	var title string
	err := r.db.QueryRow(`SELECT value FROM meta WHERE key = 'title'`).Scan(&title)
	if err != nil || title == "" {
		return r.path
	}
	return title
}

// LoadSQLite opens, reads, and closes a flowchart database.
func LoadSQLite(path string) (*model.Flowchart, error) {
	reader, err := NewSQLiteReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.LoadFlowchart()
}
