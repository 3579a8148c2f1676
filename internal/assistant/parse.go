package assistant

import (
	"encoding/json"
	"errors"
	"strings"
)

// extractJSON returns the first JSON value in raw delimited by open/close,
// tolerating prose or markdown fences around it.
func extractJSON(raw string, open, close byte) (string, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return "", errors.New("empty ai response")
	}
	if json.Valid([]byte(payload)) {
		return payload, nil
	}

	start := strings.IndexByte(payload, open)
	end := strings.LastIndexByte(payload, close)
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no json value found")
	}

	candidate := payload[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", errors.New("invalid json value")
	}
	return candidate, nil
}

func decodeObject(raw string, out any) error {
	payload, err := extractJSON(raw, '{', '}')
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(payload), out)
}

func decodeArray(raw string, out any) error {
	payload, err := extractJSON(raw, '[', ']')
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(payload), out)
}
