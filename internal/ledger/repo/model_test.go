package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	cases := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{in: "OPEN", want: SideOpen},
		{in: "CLOSE", want: SideClose},
		{in: "open", wantErr: true},
		{in: "Close", wantErr: true},
		{in: "", wantErr: true},
		{in: "BOTH", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseSide(tc.in)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestParseDecision(t *testing.T) {
	cases := []struct {
		in      string
		want    TxnStatus
		wantErr bool
	}{
		{in: "APPROVED", want: StatusApproved},
		{in: "REJECTED", want: StatusRejected},
		// PENDING não é decisão, é o estado inicial
		{in: "PENDING", wantErr: true},
		{in: "approved", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDecision(tc.in)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}
