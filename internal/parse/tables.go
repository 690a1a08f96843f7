// Package parse normalizes raw extraction documents into the four incident
// entity tables and assembles the harm association joins.
package parse

// IncidentRow is one extracted incident. Location fields default to "" when
// absent from the source JSON; downstream joins depend on that.
type IncidentRow struct {
	SourceFile     string `json:"source_file"`
	IncidentUUID   string `json:"incident_uuid"`
	FileID         string `json:"file_id"`
	IncidentID     string `json:"incident_id"`
	LocationStreet string `json:"location_street"`
	LocationCity   string `json:"location_city"`
	LocationCounty string `json:"location_county"`
	LocationState  string `json:"location_state"`
	LocationZip    string `json:"location_zip"`
	LocationType   string `json:"location_type"`
	DocumentID     string `json:"document_id"`
	CaseID         string `json:"case_id"`
}

// PlaintiffRow is one plaintiff within an incident. PlaintiffID is the
// extraction's local id, unique only within its incident.
type PlaintiffRow struct {
	SourceFile        string `json:"source_file"`
	PlaintiffUUID     string `json:"plaintiff_uuid"`
	IncidentUUID      string `json:"incident_uuid"`
	FileID            string `json:"file_id"`
	PlaintiffID       string `json:"plaintiff_id"`
	Name              string `json:"name"`
	Race              string `json:"race"`
	Gender            string `json:"gender"`
	DisabilityStatus  string `json:"disability_status"`
	ImmigrationStatus string `json:"immigration_status"`
	DocumentID        string `json:"document_id"`
	CaseID            string `json:"case_id"`
}

// DefendantRow is one defendant within an incident.
type DefendantRow struct {
	SourceFile     string `json:"source_file"`
	DefendantUUID  string `json:"defendant_uuid"`
	IncidentUUID   string `json:"incident_uuid"`
	FileID         string `json:"file_id"`
	DefendantID    string `json:"defendant_id"`
	Name           string `json:"name"`
	Race           string `json:"race"`
	Gender         string `json:"gender"`
	DoeStatus      string `json:"doe_status"`
	EntityType     string `json:"entity_type"`
	Agency         string `json:"agency"`
	AgencyType     string `json:"agency_type"`
	RoleInIncident string `json:"role_in_incident"`
	DocumentID     string `json:"document_id"`
	CaseID         string `json:"case_id"`
}

// HarmRow is one harm type token. A source harm entry with a
// semicolon-delimited type fans out into one row per token, all sharing the
// raw association-id strings.
type HarmRow struct {
	SourceFile             string `json:"source_file"`
	HarmUUID               string `json:"harm_uuid"`
	IncidentUUID           string `json:"incident_uuid"`
	FileID                 string `json:"file_id"`
	HarmType               string `json:"harm_type"`
	AssociatedPlaintiffIDs string `json:"associated_plaintiff_ids"`
	AssociatedDefendantIDs string `json:"associated_defendant_ids"`
	DocumentID             string `json:"document_id"`
	CaseID                 string `json:"case_id"`
}

// Tables groups the four combined entity tables for a parse pass.
type Tables struct {
	Incidents  []IncidentRow
	Plaintiffs []PlaintiffRow
	Defendants []DefendantRow
	Harms      []HarmRow
}

// Failure records one document that could not be parsed.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// HarmPlaintiffRow is one exploded harm↔plaintiff association. The joined
// plaintiff attributes are nil when the local id has no matching plaintiff
// in the same incident.
type HarmPlaintiffRow struct {
	HarmRow
	PlaintiffID                string  `json:"plaintiff_id"`
	PlaintiffUUID              *string `json:"plaintiff_uuid"`
	PlaintiffName              *string `json:"plaintiff_name"`
	PlaintiffRace              *string `json:"plaintiff_race"`
	PlaintiffGender            *string `json:"plaintiff_gender"`
	PlaintiffDisabilityStatus  *string `json:"plaintiff_disability_status"`
	PlaintiffImmigrationStatus *string `json:"plaintiff_immigration_status"`
}

// HarmDefendantRow is one exploded harm↔defendant association.
type HarmDefendantRow struct {
	HarmRow
	DefendantID     string  `json:"defendant_id"`
	DefendantUUID   *string `json:"defendant_uuid"`
	DefendantName   *string `json:"defendant_name"`
	DefendantRace   *string `json:"defendant_race"`
	DefendantGender *string `json:"defendant_gender"`
	DoeStatus       *string `json:"doe_status"`
	EntityType      *string `json:"entity_type"`
	Agency          *string `json:"agency"`
	AgencyType      *string `json:"agency_type"`
	RoleInIncident  *string `json:"role_in_incident"`
}
