package snapshot

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"

	"github.com/voidengine/simcore/internal/logging"
	"github.com/voidengine/simcore/internal/simerr"
)

// Repository stores Documents in a SQLite `saves` table, one row per save
// name, as a versioned JSON payload plus a blake2b checksum (SPEC_FULL's
// "Snapshot persistence" domain-stack choice). Grounded on the teacher's
// `pkg/db.DB` (`database/sql` + `mattn/go-sqlite3`, a migration runner
// creating tables on first use), generalized to `jmoiron/sqlx` for the
// named-parameter insert/select below.
type Repository struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	name       TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	payload    BLOB NOT NULL,
	checksum   BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Open connects to (and migrates) a SQLite-backed save repository. dsn
// follows mattn/go-sqlite3 conventions; ":memory:" is valid for tests.
func Open(dsn string) (*Repository, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

type saveRow struct {
	Name      string    `db:"name"`
	Version   int       `db:"version"`
	Payload   []byte    `db:"payload"`
	Checksum  []byte    `db:"checksum"`
	CreatedAt time.Time `db:"created_at"`
}

// Save serializes doc to JSON, checksums it, and upserts the row for
// doc.SaveName.
func (r *Repository) Save(doc *Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return simerr.Wrap("snapshot.Save", err, doc.SaveName)
	}
	sum := blake2b.Sum256(payload)

	_, err = r.db.NamedExec(`
		INSERT INTO saves (name, version, payload, checksum, created_at)
		VALUES (:name, :version, :payload, :checksum, :created_at)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			checksum = excluded.checksum,
			created_at = excluded.created_at
	`, saveRow{
		Name:      doc.SaveName,
		Version:   doc.SaveFormatVersion,
		Payload:   payload,
		Checksum:  sum[:],
		CreatedAt: doc.Timestamp,
	})
	if err != nil {
		return simerr.Wrap("snapshot.Save", err, doc.SaveName)
	}
	logging.Info().Str("save_name", doc.SaveName).Msg("world snapshot saved")
	return nil
}

// Load reads the row for name, verifies its checksum, and unmarshals the
// payload. A missing row returns simerr.ErrNotFound (caller should start a
// new world, spec §7); a checksum mismatch returns simerr.ErrSaveCorrupt
// (same fallback, different cause) rather than returning partial state.
func (r *Repository) Load(name string) (*Document, error) {
	var row saveRow
	err := r.db.Get(&row, "SELECT name, version, payload, checksum, created_at FROM saves WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simerr.ErrNotFound
	}
	if err != nil {
		return nil, simerr.Wrap("snapshot.Load", err, name)
	}

	sum := blake2b.Sum256(row.Payload)
	if !bytes.Equal(sum[:], row.Checksum) {
		logging.Error().Str("save_name", name).Msg("snapshot checksum mismatch, refusing to load")
		return nil, simerr.ErrSaveCorrupt
	}

	var doc Document
	if err := json.Unmarshal(row.Payload, &doc); err != nil {
		return nil, simerr.Wrap("snapshot.Load", err, name)
	}
	return &doc, nil
}

// Names lists every save slot present, most recently written first.
func (r *Repository) Names() ([]string, error) {
	var names []string
	err := r.db.Select(&names, "SELECT name FROM saves ORDER BY created_at DESC")
	return names, err
}
