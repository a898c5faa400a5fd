package inbound

import "github.com/shandysiswandi/otpgate/internal/pkg/valueobject"

const HeaderIdempotencyKey = "Idempotency-Key"

type IssueRequest struct {
	UserID valueobject.FlexInt64 `json:"userId"`
}

type IssueResponse struct {
	Success         bool   `json:"success"`
	DeliveryID      string `json:"deliveryId,omitempty"`
	Delivered       bool   `json:"delivered"`
	DeliveryFailure string `json:"deliveryFailure,omitempty"`
}

type VerifyRequest struct {
	UserID valueobject.FlexInt64  `json:"userId"`
	TOTP   valueobject.FlexString `json:"totp"`
}

type VerifyResponse struct {
	Success bool `json:"success"`
}
