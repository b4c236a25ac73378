package http

import (
	"errors"

	"github.com/indigo-web/streamgate/http/status"
)

// Parse statuses which are not errors. Everything else ParseStatus may return is an error code.
const (
	NeedMoreData = status.PartialContent
	Complete     = status.OK
)

var (
	// ErrFatal signals the ingestion bookkeeping went inconsistent. It isn't an HTTPError, as
	// the fault is on our side, not on the client's.
	ErrFatal = errors.New("fatal: request ingestion accounting is broken")
	// ErrNotComplete is returned by the methods requiring the whole message being received.
	ErrNotComplete = errors.New("request is not complete yet")
)
