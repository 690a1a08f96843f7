package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appelson/litigation-extract/internal/records"
)

func TestAttachIDs(t *testing.T) {
	tables := &Tables{
		Incidents: []IncidentRow{
			{IncidentUUID: "iu-1", FileID: "known"},
			{IncidentUUID: "iu-2", FileID: "unknown"},
		},
		Plaintiffs: []PlaintiffRow{{PlaintiffUUID: "pu-1", FileID: "known"}},
		Defendants: []DefendantRow{{DefendantUUID: "du-1", FileID: "known"}},
		Harms:      []HarmRow{{HarmUUID: "hu-1", FileID: "unknown"}},
	}

	AttachIDs(tables, records.IdentityMap{
		"known": {DocumentID: "doc-1", CaseID: "case-1"},
	})

	assert.Equal(t, "doc-1", tables.Incidents[0].DocumentID)
	assert.Equal(t, "case-1", tables.Incidents[0].CaseID)
	// Left join: rows without a mapping match keep empty ids, not dropped.
	assert.Empty(t, tables.Incidents[1].DocumentID)
	assert.Empty(t, tables.Incidents[1].CaseID)
	assert.Equal(t, "doc-1", tables.Plaintiffs[0].DocumentID)
	assert.Equal(t, "doc-1", tables.Defendants[0].DocumentID)
	assert.Empty(t, tables.Harms[0].CaseID)
}

func TestExplodeTokens(t *testing.T) {
	assert.Equal(t, []string{"p1", "p2", "p3"}, explodeTokens("p1; p2 ;p3"))
	// Empty list still yields one empty token so the harm keeps a row.
	assert.Equal(t, []string{""}, explodeTokens(""))
	assert.Equal(t, []string{"p1", ""}, explodeTokens("p1;"))
}

func TestExplodeHarmPlaintiffs(t *testing.T) {
	harms := []HarmRow{
		{HarmUUID: "hu-1", IncidentUUID: "iu-1", HarmType: "excessive force", AssociatedPlaintiffIDs: "p1; p2; p9"},
		{HarmUUID: "hu-2", IncidentUUID: "iu-1", HarmType: "false arrest", AssociatedPlaintiffIDs: ""},
	}
	plaintiffs := []PlaintiffRow{
		{PlaintiffUUID: "pu-1", IncidentUUID: "iu-1", PlaintiffID: "p1", Name: "Jane Roe", Race: "Black"},
		{PlaintiffUUID: "pu-2", IncidentUUID: "iu-1", PlaintiffID: "p2", Name: "John Doe"},
		// Same local id in a different incident never matches.
		{PlaintiffUUID: "pu-3", IncidentUUID: "iu-2", PlaintiffID: "p9", Name: "Wrong Incident"},
	}

	rows := ExplodeHarmPlaintiffs(harms, plaintiffs)
	require.Len(t, rows, 4)

	assert.Equal(t, "p1", rows[0].PlaintiffID)
	require.NotNil(t, rows[0].PlaintiffUUID)
	assert.Equal(t, "pu-1", *rows[0].PlaintiffUUID)
	assert.Equal(t, "Jane Roe", *rows[0].PlaintiffName)
	assert.Equal(t, "excessive force", rows[0].HarmType)

	require.NotNil(t, rows[1].PlaintiffUUID)
	assert.Equal(t, "pu-2", *rows[1].PlaintiffUUID)

	// p9 belongs to another incident: unmatched, attributes stay nil.
	assert.Equal(t, "p9", rows[2].PlaintiffID)
	assert.Nil(t, rows[2].PlaintiffUUID)
	assert.Nil(t, rows[2].PlaintiffName)

	// The association-less harm keeps one row with an empty plaintiff id.
	assert.Equal(t, "hu-2", rows[3].HarmUUID)
	assert.Empty(t, rows[3].PlaintiffID)
	assert.Nil(t, rows[3].PlaintiffUUID)
}

func TestExplodeHarmDefendants(t *testing.T) {
	harms := []HarmRow{
		{HarmUUID: "hu-1", IncidentUUID: "iu-1", HarmType: "excessive force", AssociatedDefendantIDs: "d1; d2"},
	}
	defendants := []DefendantRow{
		{DefendantUUID: "du-1", IncidentUUID: "iu-1", DefendantID: "d1", Name: "Officer Smith", EntityType: "individual", Agency: "Oakland PD"},
	}

	rows := ExplodeHarmDefendants(harms, defendants)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].DefendantUUID)
	assert.Equal(t, "du-1", *rows[0].DefendantUUID)
	assert.Equal(t, "Officer Smith", *rows[0].DefendantName)
	assert.Equal(t, "Oakland PD", *rows[0].Agency)

	assert.Equal(t, "d2", rows[1].DefendantID)
	assert.Nil(t, rows[1].DefendantUUID)
	assert.Nil(t, rows[1].Agency)
}
