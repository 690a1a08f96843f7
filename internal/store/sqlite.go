// Package store persists the normalized extraction tables in SQLite.
package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/appelson/litigation-extract/internal/parse"
)

// SQLiteStore writes parsed extraction tables using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS incidents (
	incident_uuid   TEXT PRIMARY KEY,
	source_file     TEXT NOT NULL,
	file_id         TEXT NOT NULL,
	incident_id     TEXT NOT NULL,
	location_street TEXT NOT NULL,
	location_city   TEXT NOT NULL,
	location_county TEXT NOT NULL,
	location_state  TEXT NOT NULL,
	location_zip    TEXT NOT NULL,
	location_type   TEXT NOT NULL,
	document_id     TEXT NOT NULL,
	case_id         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plaintiffs (
	plaintiff_uuid     TEXT PRIMARY KEY,
	incident_uuid      TEXT NOT NULL REFERENCES incidents(incident_uuid),
	source_file        TEXT NOT NULL,
	file_id            TEXT NOT NULL,
	plaintiff_id       TEXT NOT NULL,
	name               TEXT NOT NULL,
	race               TEXT NOT NULL,
	gender             TEXT NOT NULL,
	disability_status  TEXT NOT NULL,
	immigration_status TEXT NOT NULL,
	document_id        TEXT NOT NULL,
	case_id            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS defendants (
	defendant_uuid   TEXT PRIMARY KEY,
	incident_uuid    TEXT NOT NULL REFERENCES incidents(incident_uuid),
	source_file      TEXT NOT NULL,
	file_id          TEXT NOT NULL,
	defendant_id     TEXT NOT NULL,
	name             TEXT NOT NULL,
	race             TEXT NOT NULL,
	gender           TEXT NOT NULL,
	doe_status       TEXT NOT NULL,
	entity_type      TEXT NOT NULL,
	agency           TEXT NOT NULL,
	agency_type      TEXT NOT NULL,
	role_in_incident TEXT NOT NULL,
	document_id      TEXT NOT NULL,
	case_id          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS harms (
	harm_uuid                TEXT PRIMARY KEY,
	incident_uuid            TEXT NOT NULL REFERENCES incidents(incident_uuid),
	source_file              TEXT NOT NULL,
	file_id                  TEXT NOT NULL,
	harm_type                TEXT NOT NULL,
	associated_plaintiff_ids TEXT NOT NULL,
	associated_defendant_ids TEXT NOT NULL,
	document_id              TEXT NOT NULL,
	case_id                  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS parse_failures (
	file  TEXT NOT NULL,
	error TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_file_id ON incidents(file_id);
CREATE INDEX IF NOT EXISTS idx_plaintiffs_incident ON plaintiffs(incident_uuid, plaintiff_id);
CREATE INDEX IF NOT EXISTS idx_defendants_incident ON defendants(incident_uuid, defendant_id);
CREATE INDEX IF NOT EXISTS idx_harms_incident ON harms(incident_uuid);
`

// Migrate applies the table schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertTables writes all four tables and the failure log in one transaction.
func (s *SQLiteStore) InsertTables(ctx context.Context, t *parse.Tables, failed []parse.Failure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range t.Incidents {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO incidents (incident_uuid, source_file, file_id, incident_id,
				location_street, location_city, location_county, location_state, location_zip,
				location_type, document_id, case_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.IncidentUUID, r.SourceFile, r.FileID, r.IncidentID,
			r.LocationStreet, r.LocationCity, r.LocationCounty, r.LocationState, r.LocationZip,
			r.LocationType, r.DocumentID, r.CaseID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert incident")
		}
	}

	for _, r := range t.Plaintiffs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO plaintiffs (plaintiff_uuid, incident_uuid, source_file, file_id,
				plaintiff_id, name, race, gender, disability_status, immigration_status,
				document_id, case_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.PlaintiffUUID, r.IncidentUUID, r.SourceFile, r.FileID,
			r.PlaintiffID, r.Name, r.Race, r.Gender, r.DisabilityStatus, r.ImmigrationStatus,
			r.DocumentID, r.CaseID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert plaintiff")
		}
	}

	for _, r := range t.Defendants {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO defendants (defendant_uuid, incident_uuid, source_file, file_id,
				defendant_id, name, race, gender, doe_status, entity_type, agency, agency_type,
				role_in_incident, document_id, case_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.DefendantUUID, r.IncidentUUID, r.SourceFile, r.FileID,
			r.DefendantID, r.Name, r.Race, r.Gender, r.DoeStatus, r.EntityType, r.Agency, r.AgencyType,
			r.RoleInIncident, r.DocumentID, r.CaseID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert defendant")
		}
	}

	for _, r := range t.Harms {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO harms (harm_uuid, incident_uuid, source_file, file_id,
				harm_type, associated_plaintiff_ids, associated_defendant_ids, document_id, case_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.HarmUUID, r.IncidentUUID, r.SourceFile, r.FileID,
			r.HarmType, r.AssociatedPlaintiffIDs, r.AssociatedDefendantIDs, r.DocumentID, r.CaseID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert harm")
		}
	}

	for _, f := range failed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parse_failures (file, error) VALUES (?, ?)`,
			f.File, f.Error,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert parse failure")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}

// CountRows returns the row count of one table; used for post-load checks.
func (s *SQLiteStore) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "incidents", "plaintiffs", "defendants", "harms", "parse_failures":
	default:
		return 0, eris.Errorf("sqlite: unknown table %s", table)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "sqlite: count %s", table)
	}
	return n, nil
}
