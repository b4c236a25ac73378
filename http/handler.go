package http

// Handler disposes completed requests. The request is valid only for the duration of a call,
// as it is re-armed for the next message afterwards.
type Handler interface {
	// OnRequest is called once the request is completely received. Returning an error closes
	// the connection.
	OnRequest(request *Request) error
	// OnError is called when the request is malformed. The error is either a status.HTTPError
	// or ErrFatal. The connection is closed right after it.
	OnError(request *Request, err error)
}

// Disconnector may optionally be implemented by a Handler in order to be notified, when the
// connection is closed. The request is passed in whatever state it was left.
type Disconnector interface {
	OnDisconnect(request *Request)
}

// HandlerFuncs adapts plain functions to the Handler interface. OnError may be nil.
type HandlerFuncs struct {
	Request func(request *Request) error
	Error   func(request *Request, err error)
}

func (h HandlerFuncs) OnRequest(request *Request) error {
	return h.Request(request)
}

func (h HandlerFuncs) OnError(request *Request, err error) {
	if h.Error != nil {
		h.Error(request, err)
	}
}
