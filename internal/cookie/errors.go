package cookie

import "errors"

var (
	// ErrMalformedOption indicates an EDNS0 option's length field did not
	// fit the remaining option bytes, or the COOKIE option itself was
	// shorter than the mandatory 8-byte client cookie.
	ErrMalformedOption = errors.New("cookie: malformed edns0 option")

	// ErrCookieOptionNotFound indicates an OPT record's options did not
	// contain a COOKIE option (code 10).
	ErrCookieOptionNotFound = errors.New("cookie: no COOKIE option present")
)
