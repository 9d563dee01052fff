package wsshandler

import (
	"encoding/json"
)

// decodePayload round-trips the untyped payload map into a typed struct.
func decodePayload(payload map[string]any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
