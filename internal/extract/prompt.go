package extract

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// complaintPlaceholder is the slot the prompt template leaves for the
// document text.
const complaintPlaceholder = "{complaint_text}"

// LoadPrompt reads the extraction prompt template from disk.
func LoadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "extract: read prompt %s", path)
	}
	return string(data), nil
}

// RenderPrompt substitutes the complaint text into the template.
func RenderPrompt(template, complaint string) string {
	return strings.ReplaceAll(template, complaintPlaceholder, complaint)
}
