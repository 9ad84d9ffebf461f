package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventJSON(t *testing.T) {
	e := New(OrderStatusChanged, "o1", map[string]any{"from": "pending", "to": "accepted"})

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order.status_changed", decoded["type"])
	assert.Equal(t, "o1", decoded["key"])
	assert.Equal(t, "accepted", decoded["data"].(map[string]any)["to"])
	assert.False(t, e.OccurredAt.IsZero())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), New(OrderPlaced, "o1", nil)))
	assert.NoError(t, p.Close())
}
