package assessment

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// ParseOptions splits newline separated choices, trimming each line and
// dropping blank ones. Order is preserved.
func ParseOptions(raw string) []string {
	var opts []string
	for _, line := range strings.Split(raw, "\n") {
		if opt := strings.TrimSpace(line); opt != "" {
			opts = append(opts, opt)
		}
	}
	return opts
}

func encodeOptions(opts []string) (sql.NullString, error) {
	if len(opts) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeOptions(col sql.NullString) ([]string, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var opts []string
	err := json.Unmarshal([]byte(col.String), &opts)
	return opts, err
}
