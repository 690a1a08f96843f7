package records

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
)

// Record is one complaint document awaiting extraction.
type Record struct {
	FileID  string
	Content string
}

// Identity carries the stable document/case identifiers for one file id.
type Identity struct {
	DocumentID string
	CaseID     string
}

// IdentityMap maps a file id to its stable identifiers.
type IdentityMap map[string]Identity

// LoadRecords reads input records from the filtered-texts CSV. Rows without a
// file_id get a positional fallback ("index<i>"). Content is passed through
// untouched; empty content is the scheduler's concern, not a load error.
func LoadRecords(ctx context.Context, path string) ([]Record, error) {
	rows, cols, err := readAll(ctx, path)
	if err != nil {
		return nil, err
	}

	fileIDCol, ok := cols["file_id"]
	if !ok {
		fileIDCol = -1
	}
	contentCol, ok := cols["text_content"]
	if !ok {
		return nil, eris.Errorf("records: %s missing text_content column", path)
	}

	recs := make([]Record, 0, len(rows))
	for i, row := range rows {
		fileID := ""
		if fileIDCol >= 0 && fileIDCol < len(row) {
			fileID = row[fileIDCol]
		}
		if fileID == "" {
			fileID = fmt.Sprintf("index%d", i)
		}

		content := ""
		if contentCol < len(row) {
			content = row[contentCol]
		}

		recs = append(recs, Record{FileID: fileID, Content: content})
	}

	return recs, nil
}

// LoadIdentityMap reads the file_id → (document_id, case_id) mapping from the
// same CSV. Duplicate file ids keep their first occurrence.
func LoadIdentityMap(ctx context.Context, path string) (IdentityMap, error) {
	rows, cols, err := readAll(ctx, path)
	if err != nil {
		return nil, err
	}

	fileIDCol, ok := cols["file_id"]
	if !ok {
		return nil, eris.Errorf("records: %s missing file_id column", path)
	}
	docCol, hasDoc := cols["document_id"]
	caseCol, hasCase := cols["case_id"]

	ids := make(IdentityMap)
	for _, row := range rows {
		if fileIDCol >= len(row) || row[fileIDCol] == "" {
			continue
		}
		fileID := row[fileIDCol]
		if _, seen := ids[fileID]; seen {
			continue
		}

		var id Identity
		if hasDoc && docCol < len(row) {
			id.DocumentID = row[docCol]
		}
		if hasCase && caseCol < len(row) {
			id.CaseID = row[caseCol]
		}
		ids[fileID] = id
	}

	return ids, nil
}

// readAll streams the CSV and returns rows plus a header-name → index map.
func readAll(ctx context.Context, path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "records: open %s", path)
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, nil, err
	}

	cols := make(map[string]int)
	select {
	case header := <-headerCh:
		for i, name := range header {
			cols[name] = i
		}
	default:
		return nil, nil, eris.Errorf("records: %s is empty", path)
	}

	return rows, cols, nil
}
