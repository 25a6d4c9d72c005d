package callback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Payload
	}{
		{"solve", "solve_12", Payload{Verb: VerbSolve, ID: 12}},
		{"view", "view_3", Payload{Verb: VerbView, ID: 3}},
		{"vote up", "vote_up_7", Payload{Verb: VerbVoteUp, ID: 7}},
		{"vote down", "vote_down_7", Payload{Verb: VerbVoteDown, ID: 7}},
		{"report homework", "report_hw_5", Payload{Verb: VerbReportHomework, ID: 5}},
		{"report solution", "report_sol_9", Payload{Verb: VerbReportSolution, ID: 9}},
		{"manual date", "date_manual", Payload{Verb: VerbDate, Manual: true}},
		{"date", "date_2026-01-18", Payload{Verb: VerbDate, Date: time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, data := range []string{"", "solve_", "solve_x", "vote_sideways_1", "date_18.01", "view_-1", "unknown_1"} {
		_, err := Parse(data)
		assert.ErrorIs(t, err, ErrMalformed, data)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, verb := range []Verb{VerbSolve, VerbView, VerbVoteUp, VerbVoteDown, VerbReportHomework, VerbReportSolution} {
		got, err := Parse(Encode(verb, 41))
		require.NoError(t, err)
		assert.Equal(t, verb, got.Verb)
		assert.Equal(t, int64(41), got.ID)
	}

	day := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	got, err := Parse(Date(day))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", got.Date.Format("2006-01-02"))

	got, err = Parse(ManualDate())
	require.NoError(t, err)
	assert.True(t, got.Manual)
}
