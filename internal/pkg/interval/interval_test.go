package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id      string
	period  Period
	created time.Time
}

func (r row) Span() Period       { return r.period }
func (r row) Created() time.Time { return r.created }
func (r row) Key() string        { return r.id }

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestPeriodCovers(t *testing.T) {
	closed := Period{Start: day("2024-01-10"), End: dayPtr("2024-01-20")}
	open := Period{Start: day("2024-01-01")}

	assert.True(t, closed.Covers(day("2024-01-10")), "start day is inclusive")
	assert.True(t, closed.Covers(day("2024-01-20")), "end day is inclusive")
	assert.False(t, closed.Covers(day("2024-01-09")))
	assert.False(t, closed.Covers(day("2024-01-21")))

	assert.True(t, open.Covers(day("2024-06-01")), "open-ended applies indefinitely forward")
	assert.False(t, open.Covers(day("2023-12-31")))
}

func TestPeriodCoversIgnoresTimeOfDay(t *testing.T) {
	p := Period{Start: day("2024-02-01"), End: dayPtr("2024-02-01")}
	loc := time.FixedZone("AST", 3*60*60)
	assert.True(t, p.Covers(time.Date(2024, 2, 1, 23, 59, 0, 0, loc)))
	assert.True(t, p.Covers(time.Date(2024, 2, 1, 0, 1, 0, 0, loc)))
}

func TestPeriodValidAndDays(t *testing.T) {
	assert.True(t, Period{Start: day("2024-01-01")}.Valid())
	assert.True(t, Period{Start: day("2024-01-01"), End: dayPtr("2024-01-01")}.Valid())
	assert.False(t, Period{Start: day("2024-01-02"), End: dayPtr("2024-01-01")}.Valid())

	n, ok := Period{Start: day("2024-01-01"), End: dayPtr("2024-01-21")}.Days()
	assert.True(t, ok)
	assert.Equal(t, 21, n)

	_, ok = Period{Start: day("2024-01-01")}.Days()
	assert.False(t, ok)
}

func TestPeriodOverlaps(t *testing.T) {
	a := Period{Start: day("2024-01-01"), End: dayPtr("2024-01-31")}
	b := Period{Start: day("2024-01-31")}
	c := Period{Start: day("2024-02-01"), End: dayPtr("2024-02-10")}

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(c))
	assert.False(t, a.Overlaps(c))
}

func TestResolveNoMatch(t *testing.T) {
	rows := []row{{id: "a", period: Period{Start: day("2024-03-01")}}}

	_, ok := Resolve(rows, day("2024-02-01"))
	assert.False(t, ok)

	_, ok = Resolve([]row(nil), day("2024-02-01"))
	assert.False(t, ok)
}

func TestResolveLatestStartWins(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{id: "late-created-early-start", period: Period{Start: day("2024-01-01")}, created: created.Add(time.Hour)},
		{id: "later-start", period: Period{Start: day("2024-01-15")}, created: created},
	}

	got, ok := Resolve(rows, day("2024-02-01"))
	assert.True(t, ok)
	assert.Equal(t, "later-start", got.id)

	got, ok = Resolve(rows, day("2024-01-10"))
	assert.True(t, ok)
	assert.Equal(t, "late-created-early-start", got.id, "later start does not cover this day yet")
}

func TestResolveTieOnStartGoesToMostRecentlyCreated(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := []row{
		{id: "second", period: Period{Start: day("2024-01-01")}, created: created.Add(time.Minute)},
		{id: "first", period: Period{Start: day("2024-01-01")}, created: created},
	}

	got, ok := Resolve(rows, day("2024-01-05"))
	assert.True(t, ok)
	assert.Equal(t, "second", got.id)
}

func TestResolveFullTieUsesKey(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := []row{
		{id: "0190a", period: Period{Start: day("2024-01-01")}, created: created},
		{id: "0190b", period: Period{Start: day("2024-01-01")}, created: created},
	}

	got, _ := Resolve(rows, day("2024-01-05"))
	assert.Equal(t, "0190b", got.id)

	reversed := []row{rows[1], rows[0]}
	got, _ = Resolve(reversed, day("2024-01-05"))
	assert.Equal(t, "0190b", got.id, "order of candidates must not matter")
}

func TestResolveSkipsExpired(t *testing.T) {
	rows := []row{
		{id: "expired", period: Period{Start: day("2024-03-01"), End: dayPtr("2024-03-31")}},
		{id: "open", period: Period{Start: day("2024-01-01")}},
	}

	got, ok := Resolve(rows, day("2024-04-02"))
	assert.True(t, ok)
	assert.Equal(t, "open", got.id)
}

func TestSort(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := []row{
		{id: "a", period: Period{Start: day("2024-01-01")}, created: created},
		{id: "c", period: Period{Start: day("2024-03-01")}, created: created},
		{id: "b", period: Period{Start: day("2024-01-01")}, created: created.Add(time.Second)},
	}

	Sort(rows)
	assert.Equal(t, []string{"c", "b", "a"}, []string{rows[0].id, rows[1].id, rows[2].id})
}
