package data

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/scorecraft/sctl/pkg/scorecard"
)

const (
	pgDDL = `
		CREATE TABLE IF NOT EXISTS scorecard (
			id           TEXT NOT NULL PRIMARY KEY,
			name         TEXT NOT NULL,
			metric       TEXT NOT NULL,
			method       TEXT NOT NULL,
			intercept    DOUBLE PRECISION NOT NULL,
			round_status TEXT NOT NULL DEFAULT '',
			created      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS scorecard_name_idx ON scorecard (name);
		CREATE TABLE IF NOT EXISTS scorecard_entry (
			scorecard_id TEXT NOT NULL REFERENCES scorecard (id) ON DELETE CASCADE,
			variable     TEXT NOT NULL,
			bin_id       INTEGER NOT NULL,
			bin          TEXT NOT NULL,
			metric       DOUBLE PRECISION NOT NULL,
			coefficient  DOUBLE PRECISION NOT NULL,
			points       DOUBLE PRECISION NOT NULL,
			ord          INTEGER NOT NULL,
			PRIMARY KEY (scorecard_id, variable, bin_id)
		);
	`

	pgInsertScorecardSQL = `INSERT INTO scorecard
			(id, name, metric, method, intercept, round_status, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	pgInsertEntrySQL = `INSERT INTO scorecard_entry
			(scorecard_id, variable, bin_id, bin, metric, coefficient, points, ord)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	pgSelectScorecardSQL = `SELECT
			id, name, metric, method, intercept, round_status, created
		FROM scorecard
		WHERE id = $1
	`

	pgSelectEntriesSQL = `SELECT
			variable, bin_id, bin, metric, coefficient, points
		FROM scorecard_entry
		WHERE scorecard_id = $1
		ORDER BY ord
	`

	pgQueryScorecardsSQL = `SELECT
			s.id, s.name, s.method, s.created,
			COUNT(DISTINCT e.variable) AS variables,
			COUNT(*) AS bins
		FROM scorecard s
		JOIN scorecard_entry e ON e.scorecard_id = s.id
		WHERE s.name LIKE $1
		GROUP BY s.id, s.name, s.method, s.created
		ORDER BY s.created DESC
		LIMIT $2
	`

	pgDeleteScorecardSQL = `DELETE FROM scorecard WHERE id = $1`
)

// PostgresStore is a shared-deployment alternative to the local Sqlite
// store, exposing the same operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	if connStr == "" {
		return nil, errors.New("connection string required")
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres connection")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping postgres")
	}
	if _, err := db.Exec(pgDDL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create postgres schema")
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Save persists the scorecard and its entries in one transaction.
func (s *PostgresStore) Save(sc *Scorecard) error {
	if sc == nil || sc.Table == nil {
		return errors.New("scorecard required")
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.Created.IsZero() {
		sc.Created = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(pgInsertScorecardSQL, sc.ID, sc.Name, string(sc.Table.Metric),
		sc.Method, sc.Intercept, sc.RoundStatus, sc.Created); err != nil {
		return errors.Wrapf(err, "failed to insert scorecard: %s", sc.ID)
	}
	for i, e := range sc.Table.Entries {
		if _, err := tx.Exec(pgInsertEntrySQL, sc.ID, e.Variable, e.BinID, e.Bin,
			e.Metric, e.Coefficient, e.Points, i); err != nil {
			return errors.Wrapf(err, "failed to insert entry %s/%d", e.Variable, e.BinID)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit scorecard")
}

// Get loads one scorecard with all its entries.
func (s *PostgresStore) Get(id string) (*Scorecard, error) {
	sc := &Scorecard{Table: &scorecard.Table{}}
	var metric string
	row := s.db.QueryRow(pgSelectScorecardSQL, id)
	err := row.Scan(&sc.ID, &sc.Name, &metric, &sc.Method, &sc.Intercept, &sc.RoundStatus, &sc.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scorecard: %s", id)
	}
	sc.Table.Metric = scorecard.Metric(metric)

	rows, err := s.db.Query(pgSelectEntriesSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scorecard entries: %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var e scorecard.BinEntry
		if err := rows.Scan(&e.Variable, &e.BinID, &e.Bin, &e.Metric, &e.Coefficient, &e.Points); err != nil {
			return nil, errors.Wrap(err, "failed to scan scorecard entry")
		}
		sc.Table.Entries = append(sc.Table.Entries, e)
	}
	return sc, rows.Err()
}

// Query lists stored scorecards matching the name pattern.
func (s *PostgresStore) Query(like string, limit int) ([]*ScorecardListItem, error) {
	if like == "" {
		like = "%"
	} else {
		like = "%" + like + "%"
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(pgQueryScorecardsSQL, like, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query scorecards")
	}
	defer rows.Close()

	list := make([]*ScorecardListItem, 0)
	for rows.Next() {
		item := &ScorecardListItem{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Method, &item.Created,
			&item.Variables, &item.Bins); err != nil {
			return nil, errors.Wrap(err, "failed to scan scorecard list item")
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Delete removes a scorecard; entries cascade.
func (s *PostgresStore) Delete(id string) error {
	res, err := s.db.Exec(pgDeleteScorecardSQL, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete scorecard: %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
