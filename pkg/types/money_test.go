package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaiseFromRupees(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"149.99", 14999},
		{"250", 25000},
		{"0.01", 1},
	}
	for _, tc := range cases {
		got, err := PaiseFromRupees(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestPaiseFromRupeesRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "-1.00", "9.999"} {
		_, err := PaiseFromRupees(in)
		require.Error(t, err, in)
	}
}

func TestRupeesFromPaise(t *testing.T) {
	require.Equal(t, "0.00", RupeesFromPaise(0))
	require.Equal(t, "149.99", RupeesFromPaise(14999))
	require.Equal(t, "699.97", RupeesFromPaise(69997))
}
