package parse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/appelson/litigation-extract/internal/records"
)

// AttachIDs left-joins the identity mapping onto all four tables by file id.
// Rows without a mapping match keep empty document/case ids rather than
// being dropped.
func AttachIDs(t *Tables, ids records.IdentityMap) {
	for i := range t.Incidents {
		id := ids[t.Incidents[i].FileID]
		t.Incidents[i].DocumentID = id.DocumentID
		t.Incidents[i].CaseID = id.CaseID
	}
	for i := range t.Plaintiffs {
		id := ids[t.Plaintiffs[i].FileID]
		t.Plaintiffs[i].DocumentID = id.DocumentID
		t.Plaintiffs[i].CaseID = id.CaseID
	}
	for i := range t.Defendants {
		id := ids[t.Defendants[i].FileID]
		t.Defendants[i].DocumentID = id.DocumentID
		t.Defendants[i].CaseID = id.CaseID
	}
	for i := range t.Harms {
		id := ids[t.Harms[i].FileID]
		t.Harms[i].DocumentID = id.DocumentID
		t.Harms[i].CaseID = id.CaseID
	}
}

// compositeKey scopes a local id to its incident. Local ids repeat across
// incidents, so joins must never key on the local id alone.
type compositeKey struct {
	incidentUUID string
	localID      string
}

// explodeTokens splits an association-id list on ";" and trims each token.
// An empty list still yields one empty token so the harm keeps a row after
// explosion.
func explodeTokens(list string) []string {
	parts := strings.Split(list, ";")
	tokens := make([]string, len(parts))
	for i, p := range parts {
		tokens[i] = strings.TrimSpace(p)
	}
	return tokens
}

// ExplodeHarmPlaintiffs expands each harm's associated-plaintiff-id list into
// one row per id and left-joins plaintiff attributes on
// (incident_uuid, plaintiff_id). Unmatched ids keep nil attributes; they are
// a data-quality signal, not a failure.
func ExplodeHarmPlaintiffs(harms []HarmRow, plaintiffs []PlaintiffRow) []HarmPlaintiffRow {
	byKey := make(map[compositeKey]PlaintiffRow, len(plaintiffs))
	for _, p := range plaintiffs {
		byKey[compositeKey{p.IncidentUUID, p.PlaintiffID}] = p
	}

	var rows []HarmPlaintiffRow
	var unmatched int

	for _, h := range harms {
		for _, id := range explodeTokens(h.AssociatedPlaintiffIDs) {
			row := HarmPlaintiffRow{HarmRow: h, PlaintiffID: id}
			if p, ok := byKey[compositeKey{h.IncidentUUID, id}]; ok {
				row.PlaintiffUUID = &p.PlaintiffUUID
				row.PlaintiffName = &p.Name
				row.PlaintiffRace = &p.Race
				row.PlaintiffGender = &p.Gender
				row.PlaintiffDisabilityStatus = &p.DisabilityStatus
				row.PlaintiffImmigrationStatus = &p.ImmigrationStatus
			} else if id != "" {
				unmatched++
			}
			rows = append(rows, row)
		}
	}

	if unmatched > 0 {
		zap.L().Warn("harm associations reference unknown plaintiff ids",
			zap.Int("unmatched", unmatched),
		)
	}

	return rows
}

// ExplodeHarmDefendants is the defendant-side counterpart of
// ExplodeHarmPlaintiffs.
func ExplodeHarmDefendants(harms []HarmRow, defendants []DefendantRow) []HarmDefendantRow {
	byKey := make(map[compositeKey]DefendantRow, len(defendants))
	for _, d := range defendants {
		byKey[compositeKey{d.IncidentUUID, d.DefendantID}] = d
	}

	var rows []HarmDefendantRow
	var unmatched int

	for _, h := range harms {
		for _, id := range explodeTokens(h.AssociatedDefendantIDs) {
			row := HarmDefendantRow{HarmRow: h, DefendantID: id}
			if d, ok := byKey[compositeKey{h.IncidentUUID, id}]; ok {
				row.DefendantUUID = &d.DefendantUUID
				row.DefendantName = &d.Name
				row.DefendantRace = &d.Race
				row.DefendantGender = &d.Gender
				row.DoeStatus = &d.DoeStatus
				row.EntityType = &d.EntityType
				row.Agency = &d.Agency
				row.AgencyType = &d.AgencyType
				row.RoleInIncident = &d.RoleInIncident
			} else if id != "" {
				unmatched++
			}
			rows = append(rows, row)
		}
	}

	if unmatched > 0 {
		zap.L().Warn("harm associations reference unknown defendant ids",
			zap.Int("unmatched", unmatched),
		)
	}

	return rows
}
