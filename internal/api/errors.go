package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ESPError is an exception reported by an ESP service, or an HTTP failure
// without a decodable exception body.
type ESPError struct {
	Status  int
	Source  string
	Code    string
	Message string
}

func (e *ESPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "unknown error"
	}
	switch {
	case e.Code != "" && e.Source != "":
		return fmt.Sprintf("%s %s: %s", e.Source, e.Code, msg)
	case e.Code != "":
		return fmt.Sprintf("%s: %s", e.Code, msg)
	case e.Status >= 400 && e.Source == "":
		return fmt.Sprintf("HTTP %d: %s", e.Status, msg)
	default:
		return msg
	}
}

// IsESPError reports whether err carries an ESP exception.
func IsESPError(err error) bool {
	var espErr *ESPError
	return errors.As(err, &espErr)
}

type espExceptions struct {
	Source    string         `json:"Source"`
	Exception []espException `json:"Exception"`
}

type espException struct {
	Code     json.RawMessage `json:"Code"`
	Audience string          `json:"Audience"`
	Message  string          `json:"Message"`
}

// extractESPError looks for an Exceptions block either at the top level or
// nested inside the named response.
func extractESPError(body []byte, responseKey string) *ESPError {
	if len(body) == 0 {
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if raw, ok := envelope["Exceptions"]; ok {
		if e := decodeExceptions(raw); e != nil {
			return e
		}
	}
	raw, ok := envelope[responseKey]
	if !ok {
		return nil
	}
	var nested struct {
		Exceptions json.RawMessage `json:"Exceptions"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil || len(nested.Exceptions) == 0 {
		return nil
	}
	return decodeExceptions(nested.Exceptions)
}

func decodeExceptions(raw json.RawMessage) *ESPError {
	var ex espExceptions
	if err := json.Unmarshal(raw, &ex); err != nil || len(ex.Exception) == 0 {
		return nil
	}
	messages := make([]string, 0, len(ex.Exception))
	for _, e := range ex.Exception {
		if m := strings.TrimSpace(e.Message); m != "" {
			messages = append(messages, m)
		}
	}
	return &ESPError{
		Source:  ex.Source,
		Code:    strings.Trim(string(ex.Exception[0].Code), `"`),
		Message: strings.Join(messages, "; "),
	}
}
