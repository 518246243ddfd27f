package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Fields a merge patch may never touch.
var systemFields = []string{"id", "createdAt", "updatedAt", "_id", "__v"}

// Merge applies patch to current as an RFC 7386 merge patch: objects merge key by key,
// arrays and scalars replace, null removes. System fields in the patch are ignored.
func Merge[T any](current T, patch []byte) (T, error) {
	var zero T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return zero, fmt.Errorf("%w: patch must be a json object", ErrInvalid)
	}
	for _, key := range systemFields {
		delete(fields, key)
	}
	cleaned, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode patch: %w", err)
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("encode document: %w", err)
	}

	merged, err := jsonpatch.MergePatch(doc, cleaned)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader(merged))
	if err := dec.Decode(&out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return out, nil
}
