package enums

// PassDuration is the trip duration selected at submission time. Values are
// the literal labels shown to applicants.
type PassDuration string

const (
	PassDurationWeek      PassDuration = "7 Days"
	PassDurationFortnight PassDuration = "15 Days"
	PassDurationMonth     PassDuration = "30 Days"
)

var validPassDurations = []PassDuration{
	PassDurationWeek,
	PassDurationFortnight,
	PassDurationMonth,
}

// String implements fmt.Stringer.
func (d PassDuration) String() string {
	return string(d)
}

// IsValid reports whether the value matches a known duration label.
func (d PassDuration) IsValid() bool {
	for _, candidate := range validPassDurations {
		if candidate == d {
			return true
		}
	}
	return false
}

// Days returns the validity window in days. Unrecognized labels fall back to
// 30 days, matching the submission rule rather than rejecting the input.
func (d PassDuration) Days() int {
	switch d {
	case PassDurationWeek:
		return 7
	case PassDurationFortnight:
		return 15
	default:
		return 30
	}
}
