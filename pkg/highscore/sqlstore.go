package highscore

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const DbName = "./sprintrace.db"

// SQLStore keeps blobs in a sqlite database.
type SQLStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLStore(path string) (*SQLStore, error) {
	if path == "" {
		path = DbName
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	_, err = db.Exec(buildCreateBlobsTable())
	if err != nil {
		log.Printf("error init database: %s\n", err)
		db.Close()
		return nil, errors.Wrap(err, "creating blobs table")
	}

	return &SQLStore{
		db: db,
	}, nil
}

func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

func (s *SQLStore) Load(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, read := buildSelectBlobCommand(key)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return "", errors.Wrapf(err, "loading %q", key)
	}
	return read(rows)
}

func (s *SQLStore) Save(key, blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args := buildUpsertBlobCommand(key, blob)
	if _, err := s.db.Exec(query, args...); err != nil {
		log.Printf("error updating database: %s\n", err)
		return errors.Wrapf(err, "saving %q", key)
	}
	return nil
}
