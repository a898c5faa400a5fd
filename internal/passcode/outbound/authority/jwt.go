package authority

import (
	"context"
	"errors"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

// JWT verifies self-contained HS512 tokens locally.
type JWT struct {
	verifier jwt.JWT
	ins      instrument.Instrumentation
}

func NewJWT(verifier jwt.JWT, ins instrument.Instrumentation) *JWT {
	return &JWT{verifier: verifier, ins: ins}
}

func (j *JWT) Exchange(ctx context.Context, credential string) (*entity.Identity, error) {
	_, span := j.ins.Tracer("passcode.outbound.authority").Start(ctx, "JWT.Exchange")
	defer span.End()

	if j.verifier == nil {
		return nil, errors.New("authority: jwt verifier is not configured")
	}

	claims, err := j.verifier.Verify(credential)
	if err != nil {
		return nil, errors.Join(entity.ErrAuthorityRejected, err)
	}
	if claims.UserID <= 0 {
		return nil, rejected("token carries no user id")
	}

	return &entity.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
