package dnsclient

import "errors"

var (
	// ErrMissingNameservers indicates the caller supplied no nameserver and
	// none could be discovered another way (spec §7).
	ErrMissingNameservers = errors.New("dnsclient: no nameservers configured")

	// ErrNoAnswers indicates a query succeeded at the protocol level (a
	// response with the matching ID arrived) but carried zero records of
	// the requested type in its answer section.
	ErrNoAnswers = errors.New("dnsclient: no matching answers in response")
)
