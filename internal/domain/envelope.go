package domain

import (
	"encoding/json"
	"fmt"
)

// Envelope wire format of bus messages: {"pattern": "...", "data": {...}}
type Envelope struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id,omitempty"`
}

// EncodeEnvelope marshals data under the given pattern
func EncodeEnvelope(pattern string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", pattern, err)
	}

	body, err := json.Marshal(Envelope{Pattern: pattern, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", pattern, err)
	}
	return body, nil
}

// DecodeEnvelope unmarshals the envelope, data stays raw
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Pattern == "" {
		return nil, fmt.Errorf("envelope pattern is empty")
	}
	return &env, nil
}

// SessionReply reply to a create.payment.session command
type SessionReply struct {
	*SessionURLs
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
