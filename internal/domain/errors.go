package domain

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidResourceURL  = errors.New("invalid spotify url")
	ErrUnsupportedResource = errors.New("unsupported spotify resource type")
	ErrEmptyCollection     = errors.New("no tracks found for url")
	ErrNoMatch             = errors.New("no matching video found")
	ErrNothingFetched      = errors.New("no track could be downloaded")
	ErrFetchOutputMissing  = errors.New("downloader did not report an output file")
	ErrBatchNotFound       = errors.New("batch not found")
)

// ErrorKind classifies where in the pipeline a failure happened
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindResolve        ErrorKind = "resolve"
	KindSearch         ErrorKind = "search"
	KindFetch          ErrorKind = "fetch"
	KindPackaging      ErrorKind = "packaging"
	KindCleanup        ErrorKind = "cleanup"
	KindInternal       ErrorKind = "internal"
)

// BatchError carries the pipeline stage alongside the underlying failure.
// The message is the underlying error's message unchanged.
type BatchError struct {
	Kind ErrorKind
	Err  error
}

// NewBatchError wraps err with kind. A nil err stays nil.
func NewBatchError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &BatchError{Kind: kind, Err: err}
}

func (e *BatchError) Error() string {
	return e.Err.Error()
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response code: client and provider
// errors are 400, everything else 500.
func (e *BatchError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRequest, KindResolve:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of the first BatchError in err's chain
func KindOf(err error) ErrorKind {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// HTTPStatusOf returns the response code for err
func HTTPStatusOf(err error) int {
	var be *BatchError
	if errors.As(err, &be) {
		return be.HTTPStatus()
	}
	return http.StatusInternalServerError
}
