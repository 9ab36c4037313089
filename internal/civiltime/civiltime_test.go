package civiltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := ParseCivil(s)
	require.NoError(t, err)
	return parsed
}

func TestParseCivilRequiresOffset(t *testing.T) {
	parsed, err := ParseCivil("2023-04-10T09:00:00-07:00")
	require.NoError(t, err)
	assert.Equal(t, 16, parsed.UTC().Hour())

	_, err = ParseCivil("2023-04-10T09:00:00")
	assert.Error(t, err)

	_, err = ParseCivil("not-a-time")
	assert.Error(t, err)
}

func TestParseCivilAcceptsCompactOffset(t *testing.T) {
	parsed, err := ParseCivil("2023-04-10T09:00:00+0800")
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.UTC().Hour())
}

func TestParseNaive(t *testing.T) {
	parsed, err := ParseNaive("2001-06-15T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 2001, parsed.Year())

	_, err = ParseNaive("2001-06-15T00:00:00+02:00")
	assert.Error(t, err)
}

func TestToUTCIdempotent(t *testing.T) {
	parsed := mustParse(t, "2023-04-10T09:00:00-07:00")
	once := ToUTC(parsed)
	twice := ToUTC(once)
	assert.True(t, once.Equal(twice))
	assert.Equal(t, time.UTC, twice.Location())
}

func TestNewWeekdaySetRejectsOutOfRange(t *testing.T) {
	_, err := NewWeekdaySet([]int{0, 7})
	assert.Error(t, err)

	_, err = NewWeekdaySet([]int{-1})
	assert.Error(t, err)

	set, err := NewWeekdaySet([]int{0, 2})
	require.NoError(t, err)
	assert.False(t, set.Empty())
}

func TestExpandWeeklyEnumeratesMondaysAndWednesdays(t *testing.T) {
	start := mustParse(t, "2023-04-03T09:00:00-07:00")
	until := mustParse(t, "2023-04-17T09:00:00-07:00")
	set, err := NewWeekdaySet([]int{0, 2})
	require.NoError(t, err)

	occurrences := ExpandWeekly(start, until, set)
	require.Len(t, occurrences, 5)

	expectedDates := []string{"2023-04-03", "2023-04-05", "2023-04-10", "2023-04-12", "2023-04-17"}
	zone := time.FixedZone("", -7*3600)
	for i, occ := range occurrences {
		local := occ.In(zone)
		assert.Equal(t, expectedDates[i], local.Format("2006-01-02"))
		assert.Equal(t, 9, local.Hour())
	}
}

func TestExpandWeeklyWithinRangeAndAscending(t *testing.T) {
	start := mustParse(t, "2023-01-01T18:30:00+05:30")
	until := mustParse(t, "2023-03-01T18:30:00+05:30")
	set, err := NewWeekdaySet([]int{1, 4, 5})
	require.NoError(t, err)

	occurrences := ExpandWeekly(start, until, set)
	require.NotEmpty(t, occurrences)

	for i, occ := range occurrences {
		assert.False(t, occ.Before(start.UTC()))
		assert.False(t, occ.After(until.UTC()))
		assert.True(t, set.Contains(occ.In(start.Location())))
		if i > 0 {
			assert.True(t, occurrences[i-1].Before(occ), "sequence must be strictly ascending")
		}
	}
}

func TestExpandWeeklyPure(t *testing.T) {
	start := mustParse(t, "2023-04-03T09:00:00-07:00")
	until := mustParse(t, "2023-05-03T09:00:00-07:00")
	set, err := NewWeekdaySet([]int{0, 2})
	require.NoError(t, err)

	first := ExpandWeekly(start, until, set)
	second := ExpandWeekly(start, until, set)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]))
	}
}

func TestExpandWeeklyEmptyCases(t *testing.T) {
	start := mustParse(t, "2023-04-03T09:00:00-07:00")

	occurrences := ExpandWeekly(start, start.Add(-time.Hour), WeekdaySet{})
	assert.Empty(t, occurrences)

	// Tuesday-only set with a window that ends before Tuesday 9:00.
	set, err := NewWeekdaySet([]int{1})
	require.NoError(t, err)
	occurrences = ExpandWeekly(start, start.Add(23*time.Hour), set)
	assert.Empty(t, occurrences)
}

func TestExpandWeeklyInclusiveOfUntil(t *testing.T) {
	start := mustParse(t, "2023-04-03T09:00:00-07:00")
	until := mustParse(t, "2023-04-10T09:00:00-07:00")
	set, err := NewWeekdaySet([]int{0})
	require.NoError(t, err)

	occurrences := ExpandWeekly(start, until, set)
	require.Len(t, occurrences, 2)
	assert.True(t, occurrences[1].Equal(until.UTC()))

	// One second earlier and the boundary occurrence drops out.
	occurrences = ExpandWeekly(start, until.Add(-time.Second), set)
	require.Len(t, occurrences, 1)
}

func TestExpandWeeklyKeepsWallClockAcrossDSTBoundary(t *testing.T) {
	// US spring-forward was 2023-03-12. The caller's offset pins the civil
	// calendar, so every occurrence projects back to 9:00 wall time.
	start := mustParse(t, "2023-03-06T09:00:00-08:00")
	until := mustParse(t, "2023-03-20T09:00:00-08:00")
	set, err := NewWeekdaySet([]int{0})
	require.NoError(t, err)

	occurrences := ExpandWeekly(start, until, set)
	require.Len(t, occurrences, 3)
	for _, occ := range occurrences {
		local := occ.In(start.Location())
		assert.Equal(t, 9, local.Hour())
		assert.Equal(t, 0, local.Minute())
	}
}
