package entity

import (
	"errors"
	"time"
)

var (
	// ErrAuthorityRejected means the identity authority refused the credential.
	ErrAuthorityRejected = errors.New("passcode: credential rejected by identity authority")
	// ErrAuthorityTimeout means the identity authority did not answer in time.
	ErrAuthorityTimeout = errors.New("passcode: identity authority timed out")
	// ErrDeliveryRejected means the notifier refused the message.
	ErrDeliveryRejected = errors.New("passcode: delivery rejected")
)

// OTP is one issued passcode. Code holds the HMAC digest, never the plain code.
type OTP struct {
	ID            int64
	UserID        int64
	Code          string
	Status        OTPStatus
	AttemptCount  int32
	IsVerified    bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
	LastAttemptAt *time.Time
}

// IsExpired reports whether the record is past its validity window at now.
func (o OTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Attempt is the outcome of one verification attempt, persisted as a
// conditional update of the record plus an attempt-log row.
type Attempt struct {
	ID           int64
	OTPID        int64
	UserID       int64
	PrevCount    int32
	AttemptCount int32
	IsCorrect    bool
	Status       OTPStatus
	AttemptedAt  time.Time
}

// Identity is what the identity authority resolved a credential to.
type Identity struct {
	UserID int64
	Email  string
}

// Delivery is the out-of-band message carrying a plain code to its owner.
type Delivery struct {
	OTPID       int64
	UserID      int64
	Destination string
	Code        string
	ExpiresAt   time.Time
}
