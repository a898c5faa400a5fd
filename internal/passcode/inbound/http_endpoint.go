package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/passcode/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes the passcode issue and verify handlers.
type HTTPEndpoint struct {
	uc uc
}

// Issue exchanges the bearer credential, stores a new passcode and sends it
// to the owner. The code itself is never part of the response.
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		UserID:         req.UserID.Value,
		Credential:     r.BearerToken(),
		IdempotencyKey: r.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		Success:         true,
		DeliveryID:      resp.DeliveryID,
		Delivered:       resp.Delivered,
		DeliveryFailure: resp.DeliveryFailure,
	}, nil
}

// Verify checks a submitted code against the user's active passcode.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: req.UserID.Value,
		Code:   req.TOTP.String(),
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{Success: resp.Success}, nil
}
