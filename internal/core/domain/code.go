package domain

import "time"

// Channel identifies the out-of-band channel a one-time code proves control of.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelMobile Channel = "mobile"
)

// CodeTTL is the hard time-to-live of an issued one-time code. Expiry is
// enforced by the store (the record simply disappears); issuing a newer code
// for a different identifier never extends it.
const CodeTTL = 5 * time.Minute

// VerifiedTTL is how long a completed code verification stays usable by the
// enrollment pipeline before the proof of channel control goes stale.
const VerifiedTTL = 30 * time.Minute
