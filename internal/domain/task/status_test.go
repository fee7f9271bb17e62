package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusDelayed, true},
		{StatusPending, StatusCompleted, true},
		{StatusInProgress, StatusPending, true},
		{StatusDelayed, StatusCompleted, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
	}
	for _, tc := range cases {
		err := Transition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	err := Transition(StatusPending, Status("archived"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.False(t, Status("archived").Valid())
}

func TestNextStatusesIsACopy(t *testing.T) {
	next := NextStatuses(StatusPending)
	assert.ElementsMatch(t, []Status{StatusInProgress, StatusDelayed, StatusCompleted}, next)

	next[0] = StatusCompleted
	assert.Equal(t, StatusInProgress, NextStatuses(StatusPending)[0])
	assert.Empty(t, NextStatuses(StatusCompleted))
}
