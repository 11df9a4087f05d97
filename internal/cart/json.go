package cart

import (
	"bytes"
	"encoding/json"
)

// The storefront reports variant ids as JSON numbers while the sync
// protocol carries them as strings. Accept both so a snapshot round-trips
// through either surface.
func (l *RawLine) UnmarshalJSON(data []byte) error {
	type alias RawLine
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{
		alias: (*alias)(l),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		l.VariantID = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		l.VariantID = s
		return nil
	}
	// Keep the number's own digits; converting through a float would
	// mangle large ids.
	l.VariantID = string(raw)
	return nil
}
