package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
)

type memoryRepo struct {
	mu       sync.Mutex
	otps     []entity.OTP
	attempts []entity.Attempt

	createErr   error
	countErr    error
	conflicts   int
	recordCalls int
}

func (m *memoryRepo) CreateOTP(_ context.Context, otp entity.OTP, invalidatePrior bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if invalidatePrior {
		for i := range m.otps {
			o := &m.otps[i]
			if o.UserID == otp.UserID && o.Status == entity.OTPStatusActive && !o.IsExpired(otp.CreatedAt) {
				o.ExpiresAt = otp.CreatedAt
			}
		}
	}
	m.otps = append(m.otps, otp)
	return nil
}

func (m *memoryRepo) CountRecentAttempts(_ context.Context, userID int64, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, a := range m.attempts {
		if a.UserID == userID && a.AttemptedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) latest(userID int64, now time.Time, match func(entity.OTP) bool) (*entity.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []entity.OTP
	for _, o := range m.otps {
		if o.UserID == userID && !o.IsExpired(now) && match(o) {
			found = append(found, o)
		}
	}
	if len(found) == 0 {
		return nil, goerror.ErrNotFound
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	o := found[0]
	return &o, nil
}

func (m *memoryRepo) GetActiveOTP(_ context.Context, userID int64, now time.Time) (*entity.OTP, error) {
	return m.latest(userID, now, func(o entity.OTP) bool { return o.Status == entity.OTPStatusActive })
}

func (m *memoryRepo) GetLatestUnexpiredOTP(_ context.Context, userID int64, now time.Time) (*entity.OTP, error) {
	return m.latest(userID, now, func(entity.OTP) bool { return true })
}

func (m *memoryRepo) RecordAttempt(_ context.Context, a entity.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordCalls++
	if m.conflicts > 0 {
		m.conflicts--
		return goerror.ErrConflict
	}
	for i := range m.otps {
		o := &m.otps[i]
		if o.ID != a.OTPID || o.AttemptCount != a.PrevCount || o.Status != entity.OTPStatusActive {
			continue
		}
		at := a.AttemptedAt
		o.AttemptCount = a.AttemptCount
		o.Status = a.Status
		o.IsVerified = a.IsCorrect
		o.LastAttemptAt = &at
		m.attempts = append(m.attempts, a)
		return nil
	}
	return goerror.ErrConflict
}

func (m *memoryRepo) byUser(userID int64) []entity.OTP {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.OTP
	for _, o := range m.otps {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

type fakeAuthority struct {
	identity *entity.Identity
	err      error
	calls    int
}

func (f *fakeAuthority) Exchange(_ context.Context, _ string) (*entity.Identity, error) {
	f.calls++
	return f.identity, f.err
}

type fakeNotifier struct {
	sent []entity.Delivery
	err  error
	id   string
}

func (f *fakeNotifier) Deliver(_ context.Context, d entity.Delivery) (string, error) {
	f.sent = append(f.sent, d)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func (f *fakeNotifier) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Code
}

type memoryIdempotency struct {
	done map[string]bool
	err  error
}

func (m *memoryIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if m.err != nil {
		return m.err
	}
	if m.done == nil {
		m.done = map[string]bool{}
	}
	if m.done[key] {
		return idempotency.ErrAlreadyCompleted
	}
	if err := fn(ctx); err != nil {
		return err
	}
	m.done[key] = true
	return nil
}

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 {
	s.n++
	return s.n
}

var errBoom = errors.New("boom")
