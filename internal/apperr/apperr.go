package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Validation  Kind = "validation"
	NotFound    Kind = "not_found"
	Conflict    Kind = "conflict"
	Gateway     Kind = "gateway"
	Signature   Kind = "signature"
	Persistence Kind = "persistence"
)

// AppError carries a machine-checkable kind alongside the wrapped cause.
// PublicMsg is safe to show to the user; Err stays in the logs.
type AppError struct {
	Kind      Kind
	PublicMsg string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationErr(publicMsg string) *AppError {
	return &AppError{Kind: Validation, PublicMsg: publicMsg}
}

func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}

func ConflictErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Conflict, PublicMsg: publicMsg, Err: err}
}

func GatewayErr(err error) *AppError {
	return &AppError{Kind: Gateway, PublicMsg: "payment provider error", Err: err}
}

func SignatureErr(err error) *AppError {
	return &AppError{Kind: Signature, PublicMsg: "signature verification failed", Err: err}
}

func PersistenceErr(err error) *AppError {
	return &AppError{Kind: Persistence, PublicMsg: "storage error", Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Validation:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case Signature:
			return http.StatusForbidden
		case Gateway:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "unexpected error"
}
