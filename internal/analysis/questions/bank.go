// internal/analysis/questions/bank.go
package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"interview-analyzer/internal/common/errors"
)

// bankSchema validates the static question bank at load time so a bad edit
// fails at startup instead of surfacing as an empty fallback at request time.
const bankSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "role", "text"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"role": {"type": "string", "minLength": 1},
			"text": {"type": "string", "minLength": 1},
			"difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]}
		}
	}
}`

// Question is a single interview question with its provenance.
type Question struct {
	ID         string `json:"id"`
	Role       string `json:"role,omitempty"`
	Text       string `json:"text"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Bank holds the static questions in their stored order. It is read-only
// after load; concurrent suppliers share one instance with no locking.
type Bank struct {
	entries []Question
}

// LoadBank reads and validates a question bank file.
func LoadBank(path string) (*Bank, *errors.StandardError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewQuestionBankInvalidError(fmt.Sprintf("read %s: %v", path, err))
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(bankSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewQuestionBankInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, errors.NewQuestionBankInvalidError(strings.Join(details, "; "))
	}

	var entries []Question
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewQuestionBankInvalidError(err.Error())
	}

	return &Bank{entries: entries}, nil
}

// NormalizeRole maps free-form role text onto a bank key: lowercased,
// trimmed, inner whitespace collapsed to single underscores.
func NormalizeRole(role string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(role)))
	return strings.Join(fields, "_")
}

// ForRole returns up to count questions matching the role, comparing the
// normalized role key against each entry's role and identifier. When no
// entry matches, the first count entries in stored order are returned, so
// the fallback is deterministic. An empty bank returns nil.
func (b *Bank) ForRole(role string, count int) []Question {
	if len(b.entries) == 0 || count <= 0 {
		return nil
	}

	key := NormalizeRole(role)
	var matched []Question
	if key != "" {
		for _, entry := range b.entries {
			if NormalizeRole(entry.Role) == key || strings.Contains(entry.ID, key) {
				matched = append(matched, entry)
			}
		}
	}
	if len(matched) == 0 {
		matched = b.entries
	}

	if count > len(matched) {
		count = len(matched)
	}
	out := make([]Question, count)
	copy(out, matched[:count])
	return out
}

// Len reports the number of entries in the bank.
func (b *Bank) Len() int {
	return len(b.entries)
}
