package data

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/scorecraft/sctl/pkg/scorecard"
)

const (
	insertScorecardSQL = `INSERT INTO scorecard (
			id,
			name,
			metric,
			method,
			intercept,
			round_status,
			created
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	insertEntrySQL = `INSERT INTO scorecard_entry (
			scorecard_id,
			variable,
			bin_id,
			bin,
			metric,
			coefficient,
			points
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectScorecardSQL = `SELECT
			id,
			name,
			metric,
			method,
			intercept,
			round_status,
			created
		FROM scorecard
		WHERE id = ?
	`

	selectEntriesSQL = `SELECT
			variable,
			bin_id,
			bin,
			metric,
			coefficient,
			points
		FROM scorecard_entry
		WHERE scorecard_id = ?
		ORDER BY rowid
	`

	queryScorecardsSQL = `SELECT
			s.id,
			s.name,
			s.method,
			s.created,
			COUNT(DISTINCT e.variable) AS variables,
			COUNT(*) AS bins
		FROM scorecard s
		JOIN scorecard_entry e ON e.scorecard_id = s.id
		WHERE s.name LIKE ?
		GROUP BY s.id, s.name, s.method, s.created
		ORDER BY s.created DESC
		LIMIT ?
	`

	deleteScorecardSQL      = `DELETE FROM scorecard WHERE id = ?`
	deleteScorecardEntrySQL = `DELETE FROM scorecard_entry WHERE scorecard_id = ?`
)

// Scorecard is the persisted form of an assembled scorecard.
type Scorecard struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Method      string           `json:"method" yaml:"method"`
	Intercept   float64          `json:"intercept" yaml:"intercept"`
	RoundStatus string           `json:"round_status,omitempty" yaml:"roundStatus,omitempty"`
	Created     time.Time        `json:"created" yaml:"created"`
	Table       *scorecard.Table `json:"table" yaml:"table"`
}

// ScorecardListItem is the condensed row returned by QueryScorecards.
type ScorecardListItem struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Method    string    `json:"method" yaml:"method"`
	Created   time.Time `json:"created" yaml:"created"`
	Variables int       `json:"variables" yaml:"variables"`
	Bins      int       `json:"bins" yaml:"bins"`
}

// SaveScorecard persists the scorecard and its entries in one transaction.
// A new id is assigned when the record has none.
func SaveScorecard(db *sql.DB, s *Scorecard) error {
	if db == nil {
		return errDBNotInitialized
	}
	if s == nil || s.Table == nil {
		return errors.New("scorecard required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Created.IsZero() {
		s.Created = time.Now().UTC()
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(insertScorecardSQL, s.ID, s.Name, string(s.Table.Metric), s.Method,
		s.Intercept, s.RoundStatus, s.Created); err != nil {
		return errors.Wrapf(err, "failed to insert scorecard: %s", s.ID)
	}

	for _, e := range s.Table.Entries {
		if _, err := tx.Exec(insertEntrySQL, s.ID, e.Variable, e.BinID, e.Bin,
			e.Metric, e.Coefficient, e.Points); err != nil {
			return errors.Wrapf(err, "failed to insert entry %s/%d", e.Variable, e.BinID)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit scorecard")
}

// GetScorecard loads one scorecard with all its entries.
func GetScorecard(db *sql.DB, id string) (*Scorecard, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &Scorecard{Table: &scorecard.Table{}}
	var metric string
	row := db.QueryRow(selectScorecardSQL, id)
	err := row.Scan(&s.ID, &s.Name, &metric, &s.Method, &s.Intercept, &s.RoundStatus, &s.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scorecard: %s", id)
	}
	s.Table.Metric = scorecard.Metric(metric)

	rows, err := db.Query(selectEntriesSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scorecard entries: %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var e scorecard.BinEntry
		if err := rows.Scan(&e.Variable, &e.BinID, &e.Bin, &e.Metric, &e.Coefficient, &e.Points); err != nil {
			return nil, errors.Wrap(err, "failed to scan scorecard entry")
		}
		s.Table.Entries = append(s.Table.Entries, e)
	}
	return s, rows.Err()
}

// QueryScorecards lists stored scorecards matching the name pattern.
func QueryScorecards(db *sql.DB, like string, limit int) ([]*ScorecardListItem, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if like == "" {
		like = "%"
	} else {
		like = "%" + like + "%"
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(queryScorecardsSQL, like, limit)
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

// DeleteScorecard removes a scorecard and its entries.
func DeleteScorecard(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteScorecardEntrySQL, id); err != nil {
		return errors.Wrapf(err, "failed to delete scorecard entries: %s", id)
	}
	res, err := tx.Exec(deleteScorecardSQL, id)
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

	return errors.Wrap(tx.Commit(), "failed to commit delete")
}
