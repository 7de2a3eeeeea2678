package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDates_Disabled(t *testing.T) {
	start := day(2025, 1, 1)
	cfgs := []Config{
		{},
		{Enabled: false, Frequency: Weekly, LimitType: LimitSessions, Sessions: 10},
		{Enabled: false, Frequency: Monthly, LimitType: LimitDate, EndDate: "2026-01-01"},
	}
	for _, cfg := range cfgs {
		assert.Equal(t, []time.Time{start}, CalculateDates(start, cfg))
	}
}

func TestCalculateDates_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		cfg   Config
		want  []time.Time
	}{
		{
			name:  "weekly three sessions",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: LimitSessions, Sessions: 3},
			want:  []time.Time{day(2025, 1, 1), day(2025, 1, 8), day(2025, 1, 15)},
		},
		{
			name:  "biweekly two sessions",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Biweekly, LimitType: LimitSessions, Sessions: 2},
			want:  []time.Time{day(2025, 1, 1), day(2025, 1, 15)},
		},
		{
			name:  "monthly from Jan 31 spills into March",
			start: day(2025, 1, 31),
			cfg:   Config{Enabled: true, Frequency: Monthly, LimitType: LimitSessions, Sessions: 2},
			want:  []time.Time{day(2025, 1, 31), day(2025, 3, 3)},
		},
		{
			name:  "monthly steps chain from the previous date",
			start: day(2025, 1, 31),
			cfg:   Config{Enabled: true, Frequency: Monthly, LimitType: LimitSessions, Sessions: 3},
			want:  []time.Time{day(2025, 1, 31), day(2025, 3, 3), day(2025, 4, 3)},
		},
		{
			name:  "weekly until date excludes the overshoot",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: LimitDate, EndDate: "2025-01-10"},
			want:  []time.Time{day(2025, 1, 1), day(2025, 1, 8)},
		},
		{
			name:  "end date is inclusive",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: LimitDate, EndDate: "2025-01-15"},
			want:  []time.Time{day(2025, 1, 1), day(2025, 1, 8), day(2025, 1, 15)},
		},
		{
			name:  "end date before start",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: LimitDate, EndDate: "2024-12-01"},
			want:  []time.Time{day(2025, 1, 1)},
		},
		{
			name:  "unparseable end date",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: LimitDate, EndDate: "10/01/2025"},
			want:  []time.Time{day(2025, 1, 1)},
		},
		{
			name:  "unknown frequency",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: "daily", LimitType: LimitSessions, Sessions: 5},
			want:  []time.Time{day(2025, 1, 1)},
		},
		{
			name:  "unknown limit type",
			start: day(2025, 1, 1),
			cfg:   Config{Enabled: true, Frequency: Weekly, LimitType: "forever", Sessions: 5},
			want:  []time.Time{day(2025, 1, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateDates(tt.start, tt.cfg))
		})
	}
}

func TestCalculateDates_SessionsCount(t *testing.T) {
	start := day(2025, 3, 10)
	for _, f := range []Frequency{Weekly, Biweekly, Monthly} {
		for n := MinSessions; n <= MaxOccurrences; n++ {
			got := CalculateDates(start, Config{Enabled: true, Frequency: f, LimitType: LimitSessions, Sessions: n})
			require.Len(t, got, n, "frequency=%s sessions=%d", f, n)
			assert.Equal(t, start, got[0])
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i].After(got[i-1]), "frequency=%s index=%d not increasing", f, i)
			}
		}
	}
}

func TestCalculateDates_DateLimitBounds(t *testing.T) {
	start := day(2025, 2, 3)
	end := day(2025, 7, 20)
	for _, f := range []Frequency{Weekly, Biweekly, Monthly} {
		cfg := Config{Enabled: true, Frequency: f, LimitType: LimitDate, EndDate: end.Format("2006-01-02")}
		got := CalculateDates(start, cfg)
		require.NotEmpty(t, got)
		for _, d := range got {
			assert.False(t, d.After(end), "frequency=%s date %s after end", f, d.Format("2006-01-02"))
		}
		next, ok := Step(got[len(got)-1], f)
		require.True(t, ok)
		assert.True(t, next.After(end), "frequency=%s next step %s should exceed end", f, next.Format("2006-01-02"))
	}
}

func TestCalculateDates_SafetyCap(t *testing.T) {
	start := day(2025, 1, 1)
	far := Config{Enabled: true, Frequency: Weekly, LimitType: LimitDate, EndDate: "2035-12-31"}
	assert.Len(t, CalculateDates(start, far), MaxOccurrences)

	tooMany := Config{Enabled: true, Frequency: Monthly, LimitType: LimitSessions, Sessions: 500}
	assert.Len(t, CalculateDates(start, tooMany), MaxOccurrences)
}

func TestCalculateDates_Idempotent(t *testing.T) {
	start := day(2025, 5, 31)
	cfg := Config{Enabled: true, Frequency: Monthly, LimitType: LimitDate, EndDate: "2025-12-31"}
	first := CalculateDates(start, cfg)
	second := CalculateDates(start, cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, Config{Enabled: true, Frequency: Monthly, LimitType: LimitDate, EndDate: "2025-12-31"}, cfg)
}

func TestCalculateDates_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	start := time.Date(2025, 1, 1, 14, 30, 0, 0, loc)
	got := CalculateDates(start, Config{Enabled: true, Frequency: Weekly, LimitType: LimitSessions, Sessions: 2})
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), got[0])
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, loc), got[1])
}

func TestClampSessions(t *testing.T) {
	assert.Equal(t, MinSessions, ClampSessions(-3))
	assert.Equal(t, MinSessions, ClampSessions(1))
	assert.Equal(t, 10, ClampSessions(10))
	assert.Equal(t, MaxOccurrences, ClampSessions(53))
}

func TestParseFrequencyAndLimitType(t *testing.T) {
	f, err := ParseFrequency(" Biweekly ")
	require.NoError(t, err)
	assert.Equal(t, Biweekly, f)

	_, err = ParseFrequency("daily")
	assert.ErrorIs(t, err, ErrUnknownFrequency)

	l, err := ParseLimitType("DATE")
	require.NoError(t, err)
	assert.Equal(t, LimitDate, l)

	_, err = ParseLimitType("")
	assert.ErrorIs(t, err, ErrUnknownLimitType)
}
