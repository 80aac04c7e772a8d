package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{"bogus", StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionSources(t *testing.T) {
	assert.ElementsMatch(t, []string{StatusPending, StatusConfirmed}, TransitionSources(StatusCancelled))
	assert.ElementsMatch(t, []string{StatusShipped}, TransitionSources(StatusDelivered))
	assert.Empty(t, TransitionSources(StatusPending))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, (&Order{Status: StatusDelivered}).IsTerminal())
	assert.True(t, (&Order{Status: StatusCancelled}).IsTerminal())
	assert.False(t, (&Order{Status: StatusShipped}).IsTerminal())
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPending}).CanBeCancelled())
	assert.True(t, (&Order{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Order{Status: StatusProcessing}).CanBeCancelled())
	assert.False(t, (&Order{Status: StatusDelivered}).CanBeCancelled())
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("refunded"))
}
