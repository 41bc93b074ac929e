package persist

import (
	"encoding/json"
	"time"

	"github.com/kayz/promptblocks/internal/blocks"
)

// Template is a named, saved block sequence
type Template struct {
	ID        int64
	Name      string
	Category  string
	Blocks    []blocks.Block
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Generation is one resolved generation request
type Generation struct {
	ID        int64     `json:"id"`
	Provider  string    `json:"provider"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"` // "succeeded" | "failed"
	Result    string    `json:"result"`
	ErrorKind string    `json:"error_kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// toJSON converts an object to JSON string
func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// fromJSON parses JSON string into an object
func fromJSON(data string, v interface{}) error {
	if data == "" || data == "[]" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

// timeLayout keeps fixed-width fractions so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
