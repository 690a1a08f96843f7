package parse

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otherFileID = "fedcba9876543210fedcba9876543210"

func TestLoadFolder(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		testFileID + "_gpt-4o-mini_20260830.txt":  `[{"incident_id": "I1", "plaintiffs": [{"plaintiff_id": "p1"}]}]`,
		otherFileID + "_gpt-4o-mini_20260830.txt": `{"incident_id": "I2"}`,
		"badfile_gpt-4o-mini_20260830.txt":        "not json at all",
		"summary_20260830.json":                   `{"llm_type": "openai"}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	tables, failed, err := LoadFolder(dir)
	require.NoError(t, err)

	// Two documents parsed, one failed, the summary JSON ignored.
	assert.Len(t, tables.Incidents, 2)
	assert.Len(t, tables.Plaintiffs, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "badfile_gpt-4o-mini_20260830.txt", failed[0].File)
	assert.NotEmpty(t, failed[0].Error)

	// Rows carry their source file name.
	for _, inc := range tables.Incidents {
		assert.NotEmpty(t, inc.SourceFile)
	}
}

func TestLoadFolder_MissingDir(t *testing.T) {
	_, _, err := LoadFolder(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()

	uuidOf := "pu-1"
	tables := &Tables{
		Incidents: []IncidentRow{{SourceFile: "f.txt", IncidentUUID: "iu-1", FileID: testFileID, IncidentID: "I1", LocationCity: "Oakland"}},
		Plaintiffs: []PlaintiffRow{
			{SourceFile: "f.txt", PlaintiffUUID: "pu-1", IncidentUUID: "iu-1", FileID: testFileID, PlaintiffID: "p1", Name: "Jane Roe"},
		},
		Defendants: []DefendantRow{
			{SourceFile: "f.txt", DefendantUUID: "du-1", IncidentUUID: "iu-1", FileID: testFileID, DefendantID: "d1", Name: "Officer Smith"},
		},
		Harms: []HarmRow{
			{SourceFile: "f.txt", HarmUUID: "hu-1", IncidentUUID: "iu-1", FileID: testFileID, HarmType: "excessive force", AssociatedPlaintiffIDs: "p1"},
		},
	}
	hp := []HarmPlaintiffRow{{HarmRow: tables.Harms[0], PlaintiffID: "p1", PlaintiffUUID: &uuidOf}}
	hd := []HarmDefendantRow{{HarmRow: tables.Harms[0], DefendantID: "d9"}}
	failed := []Failure{{File: "bad.txt", Error: "parse: malformed extraction"}}

	require.NoError(t, WriteAll(dir, tables, hp, hd, failed))

	for _, name := range []string{
		IncidentsCSV, PlaintiffsCSV, DefendantsCSV, HarmsCSV,
		HarmsPlaintiffsCSV, HarmsDefendantsCSV, FailuresCSV,
	} {
		assert.FileExists(t, filepath.Join(dir, name), name)
	}

	incidents := readCSVFile(t, filepath.Join(dir, IncidentsCSV))
	require.Len(t, incidents, 2)
	assert.Equal(t, "source_file", incidents[0][0])
	assert.Equal(t, "iu-1", incidents[1][1])
	assert.Equal(t, "Oakland", incidents[1][5])

	hpRows := readCSVFile(t, filepath.Join(dir, HarmsPlaintiffsCSV))
	require.Len(t, hpRows, 2)
	assert.Equal(t, "pu-1", hpRows[1][10])

	// Nil joined attributes render as empty cells.
	hdRows := readCSVFile(t, filepath.Join(dir, HarmsDefendantsCSV))
	require.Len(t, hdRows, 2)
	assert.Equal(t, "d9", hdRows[1][9])
	assert.Empty(t, hdRows[1][10])

	failures := readCSVFile(t, filepath.Join(dir, FailuresCSV))
	require.Len(t, failures, 2)
	assert.Equal(t, []string{"bad.txt", "parse: malformed extraction"}, failures[1])
}
