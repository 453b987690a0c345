package dns

import "errors"

// Record validation errors.
var (
	// ErrNoName is returned when the record name is empty.
	ErrNoName = errors.New("record name is required")

	// ErrNoValue is returned when the CNAME target is empty.
	ErrNoValue = errors.New("record value is required")

	// ErrNoHostedZone is returned when the hosted zone ID is empty.
	ErrNoHostedZone = errors.New("hosted zone ID is required")

	// ErrInvalidTTL is returned when the TTL is not positive.
	ErrInvalidTTL = errors.New("invalid TTL: must be positive")

	// ErrNoChangeInfo is returned when Route 53 accepts a change but
	// returns no change info to track it by.
	ErrNoChangeInfo = errors.New("route 53 returned no change info")
)
