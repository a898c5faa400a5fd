package entity

// OTPStatus is the persisted state of a passcode record. Expiry is never
// stored; an ACTIVE record past its expires_at is simply not selected.
type OTPStatus int16

const (
	// OTPStatusUnknown is the zero value and never persisted.
	OTPStatusUnknown OTPStatus = 0
	// OTPStatusActive accepts verification attempts.
	OTPStatusActive OTPStatus = 1
	// OTPStatusVerified was matched by a correct attempt.
	OTPStatusVerified OTPStatus = 2
	// OTPStatusBlocked reached the attempt ceiling.
	OTPStatusBlocked OTPStatus = 3
)

func (s OTPStatus) String() string {
	switch s {
	case OTPStatusActive:
		return "ACTIVE"
	case OTPStatusVerified:
		return "VERIFIED"
	case OTPStatusBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// Ensure maps unrecognised values to OTPStatusUnknown.
func (s OTPStatus) Ensure() OTPStatus {
	switch s {
	case OTPStatusActive, OTPStatusVerified, OTPStatusBlocked:
		return s
	default:
		return OTPStatusUnknown
	}
}
