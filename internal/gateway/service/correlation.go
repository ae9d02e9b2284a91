package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// DefaultCorrelationTTL bounds a bank SCA round trip.
const DefaultCorrelationTTL = 10 * time.Minute

// CorrelationService ties a bank's redirect back to the session and caller
// URLs that started it. Codes are single use and expire after TTL. Only the
// code's fingerprint is stored.
type CorrelationService struct {
	Store store.Store
	TTL   time.Duration

	// PublicURL is the externally reachable gateway base URL used to build
	// the callback URLs handed to banks.
	PublicURL string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Reservation is a correlation code and its callback URLs, not yet stored.
type Reservation struct {
	Code        string
	CallbackOK  string
	CallbackNOK string
}

func (s *CorrelationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CorrelationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultCorrelationTTL
	}
	return s.TTL
}

// NewCode returns a fresh 128-bit random code.
func (s *CorrelationService) NewCode() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize128)
}

// Reserve draws a code and the gateway callback URLs that embed it.
func (s *CorrelationService) Reserve() (Reservation, error) {
	code, err := s.NewCode()
	if err != nil {
		return Reservation{}, err
	}
	return Reservation{
		Code:        code,
		CallbackOK:  s.CallbackURL(code, "ok"),
		CallbackNOK: s.CallbackURL(code, "nok"),
	}, nil
}

// CallbackURL is where a bank sends the browser for code and outcome.
func (s *CorrelationService) CallbackURL(code, outcome string) string {
	return strings.TrimSuffix(s.PublicURL, "/") + "/v1/redirect/" + url.PathEscape(code) + "/" + outcome
}

// Register stores a new correlation and returns its code.
func (s *CorrelationService) Register(ctx context.Context, sessionID, ok, nok string) (string, error) {
	code, err := s.NewCode()
	if err != nil {
		return "", err
	}
	if err := s.RegisterCode(ctx, code, sessionID, ok, nok); err != nil {
		return "", err
	}
	return code, nil
}

// RegisterCode stores a correlation for a code drawn earlier with NewCode.
func (s *CorrelationService) RegisterCode(ctx context.Context, code, sessionID, ok, nok string) error {
	return s.registerCode(ctx, s.Store, code, sessionID, ok, nok)
}

func (s *CorrelationService) registerCode(ctx context.Context, st store.Store, code, sessionID, ok, nok string) error {
	now := s.now()
	err := st.Correlations().CreateCorrelation(ctx, domain.RedirectCorrelation{
		CodeHash:  cryptox.FingerprintToken(code),
		SessionID: sessionID,
		OkURL:     ok,
		NokURL:    nok,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	})
	if err != nil {
		return fmt.Errorf("register correlation: %w", err)
	}
	return nil
}

// Consume resolves a code exactly once. Unknown, consumed and expired codes
// all fail with ErrCorrelationNotFound.
func (s *CorrelationService) Consume(ctx context.Context, code string) (domain.RedirectCorrelation, error) {
	if code == "" {
		return domain.RedirectCorrelation{}, ErrCorrelationNotFound
	}
	c, err := s.Store.Correlations().ConsumeCorrelation(ctx, cryptox.FingerprintToken(code), s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RedirectCorrelation{}, ErrCorrelationNotFound
		}
		return domain.RedirectCorrelation{}, fmt.Errorf("consume correlation: %w", err)
	}
	return c, nil
}

// Expire sweeps stale correlations. Payments and consents still waiting on
// an expired correlation, or on one consumed more than a TTL ago without
// settling, move to EXPIRED. Expired and long-consumed correlations are then
// deleted. It returns the number of rows touched; failures
// are logged, never returned.
func (s *CorrelationService) Expire(ctx context.Context) int {
	log := slogx.FromContext(ctx)
	now := s.now()
	consumedBefore := now.Add(-s.ttl())

	var total int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		steps := []struct {
			name string
			run  func() (int64, error)
		}{
			{"expire payments", func() (int64, error) { return tx.Payments().ExpireStale(ctx, now, consumedBefore) }},
			{"expire consents", func() (int64, error) { return tx.Consents().ExpireStale(ctx, now, consumedBefore) }},
			{"delete expired correlations", func() (int64, error) { return tx.Correlations().DeleteExpiredCorrelations(ctx, now) }},
			{"delete consumed correlations", func() (int64, error) {
				return tx.Correlations().DeleteConsumedCorrelations(ctx, consumedBefore)
			}},
		}
		for _, step := range steps {
			n, err := step.run()
			if err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "correlation sweep failed", slog.Any("error", err))
		return 0
	}

	if total > 0 {
		log.DebugContext(ctx, "correlation sweep", slog.Int64("rows", total))
	}
	return int(total)
}
