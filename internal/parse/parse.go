package parse

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// fileIDPattern matches the 32-hex-char record id prefix of an output file
// name.
var fileIDPattern = regexp.MustCompile(`^[a-f0-9]{32}`)

// FileIDFromName extracts the record id from an output file name, or "" when
// the name has no hex prefix.
func FileIDFromName(name string) string {
	return fileIDPattern.FindString(filepath.Base(name))
}

// looseString tolerates non-string scalars in extraction JSON: numbers and
// booleans keep their literal text, null becomes "".
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	*s = looseString(trimmed)
	return nil
}

// rawIncident mirrors one incident object in an extraction document.
type rawIncident struct {
	IncidentID     looseString    `json:"incident_id"`
	LocationStreet looseString    `json:"location_street"`
	LocationCity   looseString    `json:"location_city"`
	LocationCounty looseString    `json:"location_county"`
	LocationState  looseString    `json:"location_state"`
	LocationZip    looseString    `json:"location_zip"`
	LocationType   looseString    `json:"location_type"`
	Plaintiffs     []rawPlaintiff `json:"plaintiffs"`
	Defendants     []rawDefendant `json:"defendants"`
	Harms          []rawHarm      `json:"harms"`
}

type rawPlaintiff struct {
	PlaintiffID       looseString `json:"plaintiff_id"`
	Name              looseString `json:"name"`
	Race              looseString `json:"race"`
	Gender            looseString `json:"gender"`
	DisabilityStatus  looseString `json:"disability_status"`
	ImmigrationStatus looseString `json:"immigration_status"`
}

type rawDefendant struct {
	DefendantID    looseString `json:"defendant_id"`
	Name           looseString `json:"name"`
	Race           looseString `json:"race"`
	Gender         looseString `json:"gender"`
	DoeStatus      looseString `json:"doe_status"`
	EntityType     looseString `json:"entity_type"`
	Agency         looseString `json:"agency"`
	AgencyType     looseString `json:"agency_type"`
	RoleInIncident looseString `json:"role_in_incident"`
}

type rawHarm struct {
	Type                   looseString `json:"type"`
	AssociatedPlaintiffIDs looseString `json:"associated_plaintiff_ids"`
	AssociatedDefendantIDs looseString `json:"associated_defendant_ids"`
}

// StripFences removes a leading ``` or ```json marker and a trailing ```
// marker from a raw extraction document.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimPrefix(raw, "json")
		raw = strings.TrimLeft(raw, " \t\r\n")
	}
	if strings.HasSuffix(raw, "```") {
		raw = strings.TrimSuffix(raw, "```")
		raw = strings.TrimRight(raw, " \t\r\n")
	}

	return raw
}

// parseExtraction parses one raw extraction document. A top-level object is
// treated as a one-element incident list.
func parseExtraction(raw []byte) ([]rawIncident, error) {
	cleaned := StripFences(string(raw))

	trimmed := strings.TrimSpace(cleaned)
	if strings.HasPrefix(trimmed, "{") {
		var one rawIncident
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return nil, eris.Wrap(err, "parse: malformed extraction")
		}
		return []rawIncident{one}, nil
	}

	var many []rawIncident
	if err := json.Unmarshal([]byte(trimmed), &many); err != nil {
		return nil, eris.Wrap(err, "parse: malformed extraction")
	}
	return many, nil
}

// ExtractionToTables parses one output file into the four entity tables.
// Every row links back to its incident via a fresh synthetic uuid; local ids
// from the extraction are recorded but never used as join keys on their own.
func ExtractionToTables(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parse: read %s", path)
	}

	incidents, err := parseExtraction(raw)
	if err != nil {
		return nil, err
	}

	fileID := FileIDFromName(path)
	t := &Tables{}

	for _, inc := range incidents {
		iid := uuid.New().String()

		t.Incidents = append(t.Incidents, IncidentRow{
			IncidentUUID:   iid,
			FileID:         fileID,
			IncidentID:     string(inc.IncidentID),
			LocationStreet: string(inc.LocationStreet),
			LocationCity:   string(inc.LocationCity),
			LocationCounty: string(inc.LocationCounty),
			LocationState:  string(inc.LocationState),
			LocationZip:    string(inc.LocationZip),
			LocationType:   string(inc.LocationType),
		})

		for _, p := range inc.Plaintiffs {
			t.Plaintiffs = append(t.Plaintiffs, PlaintiffRow{
				PlaintiffUUID:     uuid.New().String(),
				IncidentUUID:      iid,
				FileID:            fileID,
				PlaintiffID:       string(p.PlaintiffID),
				Name:              string(p.Name),
				Race:              string(p.Race),
				Gender:            string(p.Gender),
				DisabilityStatus:  string(p.DisabilityStatus),
				ImmigrationStatus: string(p.ImmigrationStatus),
			})
		}

		for _, d := range inc.Defendants {
			t.Defendants = append(t.Defendants, DefendantRow{
				DefendantUUID:  uuid.New().String(),
				IncidentUUID:   iid,
				FileID:         fileID,
				DefendantID:    string(d.DefendantID),
				Name:           string(d.Name),
				Race:           string(d.Race),
				Gender:         string(d.Gender),
				DoeStatus:      string(d.DoeStatus),
				EntityType:     string(d.EntityType),
				Agency:         string(d.Agency),
				AgencyType:     string(d.AgencyType),
				RoleInIncident: string(d.RoleInIncident),
			})
		}

		for _, h := range inc.Harms {
			// One row per non-empty type token; association lists stay raw.
			for _, harmType := range strings.Split(string(h.Type), ";") {
				harmType = strings.TrimSpace(harmType)
				if harmType == "" {
					continue
				}
				t.Harms = append(t.Harms, HarmRow{
					HarmUUID:               uuid.New().String(),
					IncidentUUID:           iid,
					FileID:                 fileID,
					HarmType:               harmType,
					AssociatedPlaintiffIDs: string(h.AssociatedPlaintiffIDs),
					AssociatedDefendantIDs: string(h.AssociatedDefendantIDs),
				})
			}
		}
	}

	return t, nil
}
