package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("not logged in or session expired")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrLoginTaken         = errors.New("login already in use")
	ErrNotAMember         = errors.New("not a member of the group")
	ErrNoContentAccess    = errors.New("membership has no content access")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMember      = errors.New("already a member with content access")
	ErrInviteExhausted    = errors.New("invite exhausted")
	ErrInviteExpired      = errors.New("invite expired")
	ErrInvalidProof       = errors.New("invite proof rejected")
	ErrBadRequest         = errors.New("rejected by server")
)

// StatusError неожиданный ответ сервера.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// statusErr маппит HTTP-ответ обратно в ошибки сервиса.
func statusErr(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		if strings.Contains(msg, "no content access") {
			return ErrNoContentAccess
		}
		if strings.Contains(msg, "proof") {
			return ErrInvalidProof
		}
		return ErrNotAMember
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		if strings.Contains(msg, "login") {
			return ErrLoginTaken
		}
		return ErrAlreadyMember
	case http.StatusGone:
		if strings.Contains(msg, "expired") {
			return ErrInviteExpired
		}
		return ErrInviteExhausted
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	default:
		return &StatusError{Code: code, Body: msg}
	}
}
