package session

import (
	"errors"
	"io"
	"net/http"

	"github.com/nkiryanov/carectl/internal/apperrors"
)

// Transport attaches session credentials and runs the refresh-and-retry cycle:
//
//	NOT_SENT -> SENT -> SUCCESS | FAILED_OTHER | FAILED_401_FIRST
//	FAILED_401_FIRST -> REFRESHING -> RETRIED -> SUCCESS | FAILED_FINAL | FAILED_OTHER
//
// A 401 that cannot be recovered is returned as is; credentials are cleared by then.
type Transport struct {
	Manager *Manager

	// Base transport, http.DefaultTransport if nil
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := t.Manager.log.With("method", req.Method, "path", req.URL.Path)

	// RoundTrip must not modify the request it was given
	sent := req.Clone(ctx)
	if err := t.Manager.AttachCredentials(ctx, sent); err != nil {
		return nil, err
	}

	resp, err := t.base().RoundTrip(sent)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	log.Debug("unauthorized, trying to refresh session")
	retry, err := t.Manager.HandleUnauthorized(ctx, sent)
	switch {
	case errors.Is(err, ErrNotReplayable), errors.Is(err, apperrors.ErrSessionExpired):
		log.Debug("session not recovered", "error", err)
		return resp, nil
	case err != nil:
		drain(resp)
		return nil, err
	}
	drain(resp)

	log.Debug("retrying request with refreshed token")
	resp, err = t.base().RoundTrip(retry)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn("request rejected after refresh")
		t.Manager.expire(ctx)
	}

	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// Read the rest of body so the connection may be reused
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
