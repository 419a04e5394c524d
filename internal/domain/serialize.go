package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OutputEvent is the serialized form of a sample destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeSample encodes a sample as JSON keyed by its target event ID.
// Samples holding NaN or Inf cannot be represented in JSON and fail here
// rather than being rewritten.
func SerializeSample(s Sample) (OutputEvent, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sample %q: %w", s.TargetID, err)
	}
	return OutputEvent{
		Key:   []byte(s.TargetID),
		Value: data,
		Headers: map[string]string{
			"label":        strconv.Itoa(s.Label),
			"rows":         strconv.Itoa(len(s.Features)),
			"generated_at": s.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
