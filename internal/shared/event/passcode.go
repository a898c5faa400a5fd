package event

const PasscodeIssuedDestination string = "passcode_issued"
const PasscodeIssuedConsumerNotification string = "passcode_issued_notification"

// PasscodeIssuedMessage carries a freshly issued code to the mailer. The
// plain code travels only in this payload; consumers must not log the body.
type PasscodeIssuedMessage struct {
	DeliveryID string `json:"delivery_id"`
	OTPID      int64  `json:"otp_id"`
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Passcode   string `json:"passcode"`
	ExpiresAt  int64  `json:"expires_at"`
}
