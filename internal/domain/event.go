// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one pipeline telemetry record. Events are built by the generator,
// handed to exactly one variant client and never mutated afterwards.
type Event struct {
	Timestamp     time.Time    `json:"timestamp"`
	Message       string       `json:"message"`
	EventType     string       `json:"event_type"`
	ProcessType   string       `json:"process_type"`
	ProcessStatus string       `json:"process_status"`
	PipelineName  string       `json:"pipeline_name"`
	RunName       string       `json:"run_name"`
	RunID         uuid.UUID    `json:"run_id"`
	Tags          PipelineTags `json:"tags"`
	Attributes    Attributes   `json:"-"`
}

type PipelineTags struct {
	Environment  string   `json:"environment"`
	PipelineType string   `json:"pipeline_type"`
	UserOperator string   `json:"user_operator"`
	Department   string   `json:"department"`
	Team         string   `json:"team"`
	Others       []string `json:"others"`
}

// MarshalJSON renders attributes keyed by their kind, e.g. {"process": {...}}.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		Attributes map[AttributeKind]Attributes `json:"attributes"`
	}{
		plain:      plain(e),
		Attributes: AttributesByKind(e.Attributes),
	})
}

// AttributesByKind wraps a payload in a single-key object keyed by its kind.
// A nil payload yields nil.
func AttributesByKind(a Attributes) map[AttributeKind]Attributes {
	if a == nil {
		return nil
	}
	return map[AttributeKind]Attributes{a.Kind(): a}
}
