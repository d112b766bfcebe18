package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess     = "success"
	outcomeNotFound    = "not_authorized"
	outcomeInvalid     = "invalid_credential"
	outcomeUnavailable = "unavailable"
	outcomeDisabled    = "disabled"
	outcomeError       = "error"
)

var authAttempts = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "intranet_auth_attempts_total",
		Help: "Number of authentication attempts per identity provider and outcome.",
	},
	[]string{"provenance", "outcome"},
)

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return outcomeNotFound
	case errors.Is(err, ErrInvalidCredential):
		return outcomeInvalid
	case errors.Is(err, ErrDirectoryUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrDirectoryDisabled):
		return outcomeDisabled
	default:
		return outcomeError
	}
}
