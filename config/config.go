package config

import "time"

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Maximal int
	}

	URIRequestLineSize struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// RequestLineSize limits how many bytes may be buffered while the request line is
		// still incomplete. Default is the initial capacity of the ingestion buffer.
		RequestLineSize URIRequestLineSize
	}

	Headers struct {
		// Number is responsible for headers table size.
		// Default value is an initial size of allocated headers table.
		// Maximal value is maximum number of headers allowed to be presented
		Number HeadersNumber
		// Space limits the amount of bytes a header section may occupy, including the
		// request line. The limit is checked against buffered yet not parsed data as well,
		// so a client sending an endless header line is rejected as early as possible.
		Space HeadersSpace
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. Requests declaring
		// (or sending, in case of chunked coding) more are rejected with 413.
		MaxSize int64
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
	}
)

// Config holds limitations and pre-allocations used by the ingestion front end.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI
	Headers Headers
	Body    Body
	NET     NET
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: URIRequestLineSize{
				Default: 2 * 1024,
				// most web-entities limit it to 4-8kb, stream URLs carrying signed tokens
				// are sometimes longer.
				Maximal: 16 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 50,
			},
			Space: HeadersSpace{
				// there might be extremely long cookies.
				Maximal: 32 * 1024,
			},
		},
		Body: Body{
			MaxSize: 16 * 1024 * 1024, // 16 megabytes, signalling requests are pretty small
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
	}
}
