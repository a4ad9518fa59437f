package store

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore creates a new store with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) SQLiteStore {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS resources (
		key TEXT PRIMARY KEY,
		content_type TEXT,
		modified_at INTEGER,
		etag TEXT,
		max_age INTEGER,
		immutable INTEGER,
		bytes BLOB
	)`)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

const selectEntry = `SELECT
	key, content_type, modified_at, etag, max_age, immutable, bytes
	FROM resources`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var entry Entry
	var modifiedAt, maxAge int64
	var immutable int
	err := row.Scan(&entry.Key, &entry.ContentType, &modifiedAt, &entry.ETag, &maxAge, &immutable, &entry.Bytes)
	if err != nil {
		return Entry{}, err
	}
	entry.ModifiedAt = time.UnixMilli(modifiedAt)
	entry.MaxAge = time.Duration(maxAge) * time.Second
	entry.Immutable = immutable != 0
	// an empty blob reads back as nil
	if entry.Bytes == nil {
		entry.Bytes = []byte{}
	}
	return entry, nil
}

func (s SQLiteStore) All(prefix string) ([]Entry, error) {
	entries := make([]Entry, 0)
	rows, err := s.db.Query(selectEntry+` WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return entries, err
	}
	defer rows.Close()
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s SQLiteStore) Get(key string) (Entry, bool, error) {
	entry, err := scanEntry(s.db.QueryRow(selectEntry+" WHERE key = ?", key))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s SQLiteStore) Put(e Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	bytes := e.Bytes
	if bytes == nil {
		bytes = []byte{}
	}
	immutable := 0
	if e.Immutable {
		immutable = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO resources
		(key, content_type, modified_at, etag, max_age, immutable, bytes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Key, e.ContentType, e.ModifiedAt.UnixMilli(), e.ETag, int64(e.MaxAge/time.Second), immutable, bytes)
	return err
}

func (s SQLiteStore) Purge(key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM resources WHERE key = ?", key)
	return err
}

func (s SQLiteStore) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM resources WHERE key = ?", key).Scan(&one)
	return err == nil
}

func (s SQLiteStore) Keys(prefix string, cb func(string)) error {
	rows, err := s.db.Query(`SELECT key FROM resources WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		cb(key)
	}
	return rows.Err()
}

// Close closes the underlying db.
func (s SQLiteStore) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix returns a LIKE pattern matching keys starting with prefix.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
