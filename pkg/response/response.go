package response

import (
	"errors"
	"net/http"
)

// Kind classifies a collaborator failure so callers can pick a recovery
// path: session errors trigger a refresh flow, network errors are retried,
// the rest surface one stable user-facing message.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindSession
	KindUpload
	KindValidation
	KindServer
)

var kindMap = map[Kind]string{
	KindUnknown:    "unknown",
	KindNetwork:    "network",
	KindSession:    "session",
	KindUpload:     "upload",
	KindValidation: "validation",
	KindServer:     "server",
}

func (k Kind) String() string {
	return kindMap[k]
}

type Error struct {
	Code        int
	Kind        Kind
	Err         error
	RedirectURL string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Kind: ClassifyStatus(code), Err: errors.New(err)}
}

func NewErrorWithRedirect(code int, err string, redirectURL string) error {
	return &Error{Code: code, Kind: ClassifyStatus(code), Err: errors.New(err), RedirectURL: redirectURL}
}

// ClassifyStatus maps an HTTP status to a failure kind. Status 0 means the
// request never produced a response.
func ClassifyStatus(code int) Kind {
	switch {
	case code == 0:
		return KindNetwork
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindSession
	case code == http.StatusRequestEntityTooLarge || code == http.StatusUnsupportedMediaType:
		return KindUpload
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return KindValidation
	case code == http.StatusRequestTimeout || code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
		return KindNetwork
	case code >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf extracts the failure kind from any error chain.
func KindOf(err error) Kind {
	var respErr *Error
	if errors.As(err, &respErr) {
		return respErr.Kind
	}
	return KindUnknown
}
