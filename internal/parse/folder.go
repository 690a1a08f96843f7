package parse

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadFolder parses every extraction .txt file in a provider's output folder
// into combined tables. Files that fail to parse land in the failure list;
// they never abort the batch. Summary JSON documents in the same folder are
// ignored.
func LoadFolder(dir string) (*Tables, []Failure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "parse: read folder %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	combined := &Tables{}
	var failed []Failure

	for _, name := range names {
		t, err := ExtractionToTables(filepath.Join(dir, name))
		if err != nil {
			failed = append(failed, Failure{File: name, Error: err.Error()})
			continue
		}
		combined.append(t, name)
	}

	zap.L().Info("folder parsed",
		zap.String("dir", dir),
		zap.Int("files", len(names)),
		zap.Int("failed", len(failed)),
		zap.Int("incidents", len(combined.Incidents)),
	)

	return combined, failed, nil
}

// append concatenates one document's tables, tagging rows with their source
// file name.
func (t *Tables) append(doc *Tables, sourceFile string) {
	for _, r := range doc.Incidents {
		r.SourceFile = sourceFile
		t.Incidents = append(t.Incidents, r)
	}
	for _, r := range doc.Plaintiffs {
		r.SourceFile = sourceFile
		t.Plaintiffs = append(t.Plaintiffs, r)
	}
	for _, r := range doc.Defendants {
		r.SourceFile = sourceFile
		t.Defendants = append(t.Defendants, r)
	}
	for _, r := range doc.Harms {
		r.SourceFile = sourceFile
		t.Harms = append(t.Harms, r)
	}
}
