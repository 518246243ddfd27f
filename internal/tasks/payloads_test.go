package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMediaDestroyTask(t *testing.T) {
	task, err := NewMediaDestroyTask(MediaDestroyPayload{
		PublicID:      "vault-envelopes/memories/ana/memory-1",
		ResourceType:  "image",
		CorrelationID: "cid",
	})
	require.NoError(t, err)
	assert.Equal(t, TypeMediaDestroy, task.Type())

	var got MediaDestroyPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, "vault-envelopes/memories/ana/memory-1", got.PublicID)

	_, err = NewMediaDestroyTask(MediaDestroyPayload{})
	assert.Error(t, err)
}
