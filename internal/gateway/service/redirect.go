package service

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// RedirectPolicy decides which caller URLs the gateway will send a browser
// back to after SCA. Relative paths are always allowed; absolute URLs only
// when their origin is listed.
type RedirectPolicy struct {
	AllowedOrigins []string
}

func (p RedirectPolicy) Validate(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: redirect url is required", ErrInvalidRequest)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: redirect url: %v", ErrInvalidRequest, err)
	}

	if !u.IsAbs() {
		// "//host/path" is scheme-relative and would leave the gateway origin.
		if u.Host != "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
			return fmt.Errorf("%w: redirect url %q must be an absolute path", ErrInvalidRequest, raw)
		}
		return nil
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%w: redirect url scheme %q", ErrInvalidRequest, u.Scheme)
	}
	origin := u.Scheme + "://" + u.Host
	if !slices.Contains(p.AllowedOrigins, origin) {
		return fmt.Errorf("%w: redirect origin %s is not allowed", ErrInvalidRequest, origin)
	}
	return nil
}

// ValidatePair checks an ok/nok pair.
func (p RedirectPolicy) ValidatePair(ok, nok string) error {
	if err := p.Validate(ok); err != nil {
		return err
	}
	return p.Validate(nok)
}
