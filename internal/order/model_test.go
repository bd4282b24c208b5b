package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"Pending", StatusPending},
		{"submitted", StatusSubmitted},
		{" SHIPPED ", StatusShipped},
		{"Delivered", StatusDelivered},
		{"cancelled", StatusCancelled},
		{"Completed", StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStatus(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "Lost", "Canceled", "Ship"} {
		t.Run("unknown "+bad, func(t *testing.T) {
			_, err := ParseStatus(bad)
			assert.ErrorIs(t, err, ErrInvalidStatus)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:   false,
		StatusSubmitted: false,
		StatusShipped:   false,
		StatusDelivered: true,
		StatusCompleted: true,
		StatusCancelled: true,
	}
	assert.Len(t, terminal, len(allStatuses))
	for _, st := range allStatuses {
		assert.Equal(t, terminal[st], st.IsTerminal(), string(st))
	}
}
