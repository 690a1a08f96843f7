package parse

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Output file names for the assembled tables.
const (
	IncidentsCSV       = "incidents_extract.csv"
	PlaintiffsCSV      = "plaintiffs_extract.csv"
	DefendantsCSV      = "defendants_extract.csv"
	HarmsCSV           = "harms_extract.csv"
	HarmsPlaintiffsCSV = "harms_plaintiffs.csv"
	HarmsDefendantsCSV = "harms_defendants.csv"
	FailuresCSV        = "parse_failures.csv"
)

// deref renders a nullable joined attribute; nil stays empty.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// writeTable writes one delimited table with its header.
func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "parse: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "parse: write header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "parse: write row %s", path)
		}
	}
	return w.Error()
}

// WriteAll emits the six assembled tables plus the failure log.
func WriteAll(dir string, t *Tables, hp []HarmPlaintiffRow, hd []HarmDefendantRow, failed []Failure) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "parse: create export dir %s", dir)
	}

	incRows := make([][]string, len(t.Incidents))
	for i, r := range t.Incidents {
		incRows[i] = []string{
			r.SourceFile, r.IncidentUUID, r.FileID, r.IncidentID,
			r.LocationStreet, r.LocationCity, r.LocationCounty,
			r.LocationState, r.LocationZip, r.LocationType,
			r.DocumentID, r.CaseID,
		}
	}
	if err := writeTable(filepath.Join(dir, IncidentsCSV), []string{
		"source_file", "incident_uuid", "file_id", "incident_id",
		"location_street", "location_city", "location_county",
		"location_state", "location_zip", "location_type",
		"document_id", "case_id",
	}, incRows); err != nil {
		return err
	}

	plaRows := make([][]string, len(t.Plaintiffs))
	for i, r := range t.Plaintiffs {
		plaRows[i] = []string{
			r.SourceFile, r.PlaintiffUUID, r.IncidentUUID, r.FileID,
			r.PlaintiffID, r.Name, r.Race, r.Gender,
			r.DisabilityStatus, r.ImmigrationStatus,
			r.DocumentID, r.CaseID,
		}
	}
	if err := writeTable(filepath.Join(dir, PlaintiffsCSV), []string{
		"source_file", "plaintiff_uuid", "incident_uuid", "file_id",
		"plaintiff_id", "name", "race", "gender",
		"disability_status", "immigration_status",
		"document_id", "case_id",
	}, plaRows); err != nil {
		return err
	}

	defRows := make([][]string, len(t.Defendants))
	for i, r := range t.Defendants {
		defRows[i] = []string{
			r.SourceFile, r.DefendantUUID, r.IncidentUUID, r.FileID,
			r.DefendantID, r.Name, r.Race, r.Gender,
			r.DoeStatus, r.EntityType, r.Agency, r.AgencyType,
			r.RoleInIncident, r.DocumentID, r.CaseID,
		}
	}
	if err := writeTable(filepath.Join(dir, DefendantsCSV), []string{
		"source_file", "defendant_uuid", "incident_uuid", "file_id",
		"defendant_id", "name", "race", "gender",
		"doe_status", "entity_type", "agency", "agency_type",
		"role_in_incident", "document_id", "case_id",
	}, defRows); err != nil {
		return err
	}

	harmRows := make([][]string, len(t.Harms))
	for i, r := range t.Harms {
		harmRows[i] = []string{
			r.SourceFile, r.HarmUUID, r.IncidentUUID, r.FileID,
			r.HarmType, r.AssociatedPlaintiffIDs, r.AssociatedDefendantIDs,
			r.DocumentID, r.CaseID,
		}
	}
	if err := writeTable(filepath.Join(dir, HarmsCSV), []string{
		"source_file", "harm_uuid", "incident_uuid", "file_id",
		"harm_type", "associated_plaintiff_ids", "associated_defendant_ids",
		"document_id", "case_id",
	}, harmRows); err != nil {
		return err
	}

	hpRows := make([][]string, len(hp))
	for i, r := range hp {
		hpRows[i] = []string{
			r.SourceFile, r.HarmUUID, r.IncidentUUID, r.FileID,
			r.HarmType, r.AssociatedPlaintiffIDs, r.AssociatedDefendantIDs,
			r.DocumentID, r.CaseID,
			r.PlaintiffID, deref(r.PlaintiffUUID), deref(r.PlaintiffName),
			deref(r.PlaintiffRace), deref(r.PlaintiffGender),
			deref(r.PlaintiffDisabilityStatus), deref(r.PlaintiffImmigrationStatus),
		}
	}
	if err := writeTable(filepath.Join(dir, HarmsPlaintiffsCSV), []string{
		"source_file", "harm_uuid", "incident_uuid", "file_id",
		"harm_type", "associated_plaintiff_ids", "associated_defendant_ids",
		"document_id", "case_id",
		"plaintiff_id", "plaintiff_uuid", "plaintiff_name",
		"plaintiff_race", "plaintiff_gender",
		"plaintiff_disability_status", "plaintiff_immigration_status",
	}, hpRows); err != nil {
		return err
	}

	hdRows := make([][]string, len(hd))
	for i, r := range hd {
		hdRows[i] = []string{
			r.SourceFile, r.HarmUUID, r.IncidentUUID, r.FileID,
			r.HarmType, r.AssociatedPlaintiffIDs, r.AssociatedDefendantIDs,
			r.DocumentID, r.CaseID,
			r.DefendantID, deref(r.DefendantUUID), deref(r.DefendantName),
			deref(r.DefendantRace), deref(r.DefendantGender),
			deref(r.DoeStatus), deref(r.EntityType), deref(r.Agency),
			deref(r.AgencyType), deref(r.RoleInIncident),
		}
	}
	if err := writeTable(filepath.Join(dir, HarmsDefendantsCSV), []string{
		"source_file", "harm_uuid", "incident_uuid", "file_id",
		"harm_type", "associated_plaintiff_ids", "associated_defendant_ids",
		"document_id", "case_id",
		"defendant_id", "defendant_uuid", "defendant_name",
		"defendant_race", "defendant_gender",
		"doe_status", "entity_type", "agency", "agency_type",
		"role_in_incident",
	}, hdRows); err != nil {
		return err
	}

	failRows := make([][]string, len(failed))
	for i, r := range failed {
		failRows[i] = []string{r.File, r.Error}
	}
	if err := writeTable(filepath.Join(dir, FailuresCSV), []string{"file", "error"}, failRows); err != nil {
		return err
	}

	zap.L().Info("tables exported",
		zap.String("dir", dir),
		zap.Int("incidents", len(t.Incidents)),
		zap.Int("plaintiffs", len(t.Plaintiffs)),
		zap.Int("defendants", len(t.Defendants)),
		zap.Int("harms", len(t.Harms)),
		zap.Int("harms_plaintiffs", len(hp)),
		zap.Int("harms_defendants", len(hd)),
		zap.Int("failed", len(failed)),
	)

	return nil
}
