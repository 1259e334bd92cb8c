package candidates

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/candidates.json
var referenceDataset []byte

// EmbeddedSource serves the reference dataset compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Fetch(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeDataset(referenceDataset)
}

// DecodeDataset parses a JSON array in the reference dataset layout. Unknown
// columns are rejected so a renamed column cannot silently zero a field.
func DecodeDataset(raw []byte) ([]Candidate, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var rows []record
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if rows == nil {
		return nil, fmt.Errorf("decode dataset: expected a JSON array")
	}
	out := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCandidate())
	}
	return out, nil
}

// EncodeDataset renders candidates in the reference dataset layout.
func EncodeDataset(items []Candidate) ([]byte, error) {
	rows := make([]record, 0, len(items))
	for _, c := range items {
		rows = append(rows, fromCandidate(c))
	}
	return json.MarshalIndent(rows, "", "  ")
}
