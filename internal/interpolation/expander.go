// Package interpolation expands address interpolations, where two endpoint
// addresses imply the house numbers between them, into individual addresses.
package interpolation

import (
	"fmt"
	"regexp"

	"github.com/at-addrcompare/internal/address"
	"github.com/at-addrcompare/internal/errors"
)

// SchemeAlphabetic interpolates over the letter suffix of one house number,
// e.g. 12 to 12c gives 12a, 12b, 12c.
const SchemeAlphabetic = "alphabetic"

var (
	reFrom = regexp.MustCompile(`^([0-9]+)([a-z])?$`)
	reTo   = regexp.MustCompile(`^([0-9]+)([a-z])$`)
)

// Error explains why an interpolation produced no addresses.
type Error struct {
	Scheme string
	From   string
	To     string
	Reason string
	err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("interpolation %s %q..%q: %s", e.Scheme, e.From, e.To, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Expand returns the addresses on street implied by the house numbers from and
// to under scheme. from and to must already be normalized. On failure the set
// is empty and the error says why; callers report it and carry on.
func Expand(scheme, street, from, to string) (address.Set, error) {
	switch scheme {
	case SchemeAlphabetic:
		return expandAlphabetic(street, from, to)
	default:
		return address.Set{}, &Error{
			Scheme: scheme, From: from, To: to,
			Reason: "unsupported scheme",
			err:    errors.ErrUnsupported,
		}
	}
}

func expandAlphabetic(street, from, to string) (address.Set, error) {
	fail := func(reason string) (address.Set, error) {
		return address.Set{}, &Error{
			Scheme: SchemeAlphabetic, From: from, To: to,
			Reason: reason,
			err:    errors.ErrInvalidInput,
		}
	}

	fm := reFrom.FindStringSubmatch(from)
	if fm == nil {
		return fail("start is not digits with an optional letter")
	}
	tm := reTo.FindStringSubmatch(to)
	if tm == nil {
		return fail("end is not digits followed by a letter")
	}

	// Digits are compared as text so "012" and "12" do not count as the
	// same house and no re-padding happens.
	digits := fm[1]
	if digits != tm[1] {
		return fail("start and end have different numbers")
	}

	first := byte('a')
	if fm[2] != "" {
		first = fm[2][0]
	}
	last := tm[2][0]
	if first > last {
		return fail("end letter precedes start letter")
	}

	out := make(address.Set, int(last-first)+1)
	for c := first; c <= last; c++ {
		out.Add(address.Address{Street: street, HouseNumber: digits + string(c)})
	}
	return out, nil
}
