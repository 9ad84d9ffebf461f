package statemachine

import (
	"errors"
	"testing"

	"localchef-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		ok       bool
	}{
		{models.StatusPending, models.StatusAccepted, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusAccepted, models.StatusDelivered, true},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusAccepted, models.StatusAccepted, false},
		{models.StatusAccepted, models.StatusRejected, false},
		{models.StatusRejected, models.StatusDelivered, false},
		{models.StatusRejected, models.StatusAccepted, false},
		{models.StatusDelivered, models.StatusAccepted, false},
		{models.StatusDelivered, models.StatusRejected, false},
		{models.StatusDelivered, models.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CanTransitionOrder(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, string(tt.from), te.From)
			assert.Equal(t, string(tt.to), te.To)
		})
	}
}

// Every reachable status is reached from pending, and delivered needs accepted first.
func TestOrderMachineReachability(t *testing.T) {
	paths := map[models.OrderStatus][]models.OrderStatus{models.StatusPending: {models.StatusPending}}
	queue := []models.OrderStatus{models.StatusPending}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range ValidOrderTransitionsFrom(cur) {
			if _, seen := paths[next]; seen {
				continue
			}
			paths[next] = append(append([]models.OrderStatus{}, paths[cur]...), next)
			queue = append(queue, next)
		}
	}

	assert.Len(t, paths, 4)
	assert.Equal(t, []models.OrderStatus{models.StatusPending, models.StatusAccepted, models.StatusDelivered}, paths[models.StatusDelivered])
	assert.True(t, IsOrderTerminal(models.StatusRejected))
	assert.True(t, IsOrderTerminal(models.StatusDelivered))
	assert.False(t, IsOrderTerminal(models.StatusPending))
}

func TestIsOrderTarget(t *testing.T) {
	assert.True(t, IsOrderTarget(models.StatusAccepted))
	assert.True(t, IsOrderTarget(models.StatusDelivered))
	assert.False(t, IsOrderTarget(models.StatusPending))
	assert.False(t, IsOrderTarget("shipped"))
}

func TestTransitionErrorMessage(t *testing.T) {
	err := CanTransitionOrder(models.StatusDelivered, models.StatusAccepted)
	assert.Contains(t, err.Error(), "delivered → accepted")
	assert.Contains(t, err.Error(), "terminal")
}

func TestCanResolveRequest(t *testing.T) {
	assert.NoError(t, CanResolveRequest(models.RequestPending, models.ActionAccept))
	assert.NoError(t, CanResolveRequest(models.RequestPending, models.ActionReject))

	for _, from := range []models.RequestStatus{models.RequestAccepted, models.RequestRejected} {
		for _, action := range []models.RequestAction{models.ActionAccept, models.ActionReject} {
			err := CanResolveRequest(from, action)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s/%s", from, action)
		}
	}
}

func TestInitialAndTerminalStates(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.StatusPending}, OrderInitialStates())
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusRejected, models.StatusDelivered}, OrderTerminalStates())
	for _, s := range OrderTerminalStates() {
		assert.True(t, IsOrderTerminal(s), s)
	}

	assert.Equal(t, []models.RequestStatus{models.RequestPending}, RequestInitialStates())
	assert.ElementsMatch(t, []models.RequestStatus{models.RequestAccepted, models.RequestRejected}, RequestTerminalStates())
}
