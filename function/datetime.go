package function

import (
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/sosodev/duration"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/vjeantet/jodaTime"
)

func datetimeRules() []Rule {
	return []Rule{
		{Name: "now", Sig: Sig(), Eval: now},
		{Name: "ago", Sig: Sig(String), Eval: ago},
		{Name: "fromDateTime", Sig: Signature{Params: []ArgKind{String, String, String}, Optional: 1}, Eval: fromDateTime},
		{Name: "toDateTime", Sig: Signature{Params: []ArgKind{Integral, String, String}, Optional: 1}, Eval: toDateTime},
		{Name: "toEpochSeconds", Sig: Sig(Integral), Eval: toEpochSeconds},
		{Name: "fromEpochSeconds", Sig: Sig(Integral), Eval: fromEpochSeconds},
	}
}

// now returns the wall clock in epoch milliseconds.
func now(env Env, _ []querier.Value) (querier.Value, error) {
	return querier.LongValue(env.Clock.Now().UnixMilli()), nil
}

// ago subtracts an ISO-8601 duration such as PT1H or P1DT2H30M from the
// wall clock.
func ago(env Env, args []querier.Value) (querier.Value, error) {
	d, err := parseISODuration(args[0].Text())
	if err != nil {
		return querier.Value{}, err
	}
	return querier.LongValue(env.Clock.Now().Add(-d).UnixMilli()), nil
}

func parseISODuration(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid ISO-8601 duration %q", s)
	}
	if d.Years != 0 || d.Months != 0 || d.Weeks != 0 {
		return 0, errors.Newf("duration %q has calendar components, only days and time are allowed", s)
	}
	return d.ToTimeDuration(), nil
}

// fromDateTime parses value with a Joda-style pattern into epoch
// milliseconds. When the pattern has no zone the value is read as UTC, or in
// the optional third argument's time zone.
func fromDateTime(_ Env, args []querier.Value) (querier.Value, error) {
	value, pattern := args[0].Text(), args[1].Text()

	layout, hasZone, err := parsePattern(pattern)
	if err != nil {
		return querier.Value{}, err
	}

	t, err := jodaTime.Parse(layout, value)
	if err != nil {
		return querier.Value{}, errors.Wrapf(err, "cannot parse %q with pattern %q", value, pattern)
	}

	if len(args) == 3 && !hasZone {
		loc, err := time.LoadLocation(args[2].Text())
		if err != nil {
			return querier.Value{}, errors.Wrapf(err, "unknown time zone %q", args[2].Text())
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}

	return querier.LongValue(t.UnixMilli()), nil
}

// parsePattern rewrites unquoted zone name fields (z) of a Joda pattern as
// the quoted Go zone abbreviation layout, which jodaTime copies through
// verbatim. hasZone reports whether the pattern has any zone field.
func parsePattern(pattern string) (layout string, hasZone bool, err error) {
	var b strings.Builder
	quoted := false

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case quoted:
			b.WriteByte(c)
		case c == 'z':
			for i+1 < len(pattern) && pattern[i+1] == 'z' {
				i++
			}
			b.WriteString("'MST'")
			hasZone = true
		default:
			if c == 'Z' {
				hasZone = true
			}
			b.WriteByte(c)
		}
	}

	if quoted {
		return "", false, errors.Newf("unterminated quote in pattern %q", pattern)
	}

	return b.String(), hasZone, nil
}

// toDateTime formats epoch milliseconds with a Joda-style pattern, in UTC
// unless a time zone is given.
func toDateTime(_ Env, args []querier.Value) (querier.Value, error) {
	loc := time.UTC
	if len(args) == 3 {
		var err error
		loc, err = time.LoadLocation(args[2].Text())
		if err != nil {
			return querier.Value{}, errors.Wrapf(err, "unknown time zone %q", args[2].Text())
		}
	}

	if _, _, err := parsePattern(args[1].Text()); err != nil {
		return querier.Value{}, err
	}

	t := time.UnixMilli(args[0].Long()).In(loc)
	return querier.StringValue(jodaTime.Format(args[1].Text(), t)), nil
}

func toEpochSeconds(_ Env, args []querier.Value) (querier.Value, error) {
	return querier.LongValue(args[0].Long() / 1000), nil
}

func fromEpochSeconds(_ Env, args []querier.Value) (querier.Value, error) {
	s := args[0].Long()
	if s > math.MaxInt64/1000 || s < math.MinInt64/1000 {
		return querier.Value{}, errIntegerOverflow
	}
	return querier.LongValue(s * 1000), nil
}
