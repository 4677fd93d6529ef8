package keypool

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMalformedKeySource is returned when a key source matches neither
// accepted shape.
var ErrMalformedKeySource = errors.New("malformed key source")

// keyRecord is one entry of the list-shaped key source:
//
//	[{"name": "k1", "key": "sk-..."}, ...]
//
// Extra metadata fields are tolerated and ignored.
type keyRecord struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// singleKeySource is the single-key shape: {"api_key": "sk-..."}.
type singleKeySource struct {
	APIKey string `json:"api_key"`
}

// parseKeySource decodes a key source blob into (name, key) pairs.
// Two shapes are accepted: a JSON array of {name, key} records, or a
// single {api_key} object. Anything else fails with ErrMalformedKeySource.
func parseKeySource(src []byte) ([]keyRecord, error) {
	var records []keyRecord
	if err := json.Unmarshal(src, &records); err == nil {
		for i, rec := range records {
			if rec.Key == "" {
				return nil, fmt.Errorf("%w: entry %d has no key", ErrMalformedKeySource, i)
			}
		}
		return records, nil
	}

	var single singleKeySource
	if err := json.Unmarshal(src, &single); err == nil && single.APIKey != "" {
		return []keyRecord{{Key: single.APIKey}}, nil
	}

	return nil, ErrMalformedKeySource
}

// newCredentialName labels credentials that arrive without a name.
func newCredentialName() string {
	return "key-" + uuid.NewString()[:8]
}
