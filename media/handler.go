package media

import (
	"errors"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/streamgate/http"
	"github.com/indigo-web/streamgate/http/method"
	"github.com/indigo-web/streamgate/http/status"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

const streamsPrefix = "/streams/"

// Session identifies the publisher behind a connection. It is kept in the request's
// extension slot, so it lives as long as the connection does.
type Session struct {
	ID string
}

// SessionOf returns the session attached to the request, attaching a new one if there's none.
func SessionOf(request *http.Request) *Session {
	if session, ok := http.ExtensionAs[*Session](request); ok {
		return session
	}

	session := &Session{ID: uniuri.New()}
	request.SetExtension(session)

	return session
}

type createParams struct {
	ContentType string `json:"content_type"`
	Bitrate     int    `json:"bitrate"`
}

// Handler exposes the registry over plain HTTP/1.x requests:
//
//	PUT    /streams/{name}  creates the stream, optionally described by a JSON body
//	POST   /streams/{name}  pushes the body as a single frame, content codings removed
//	DELETE /streams/{name}  deletes the stream
//	GET    /streams/{name}  returns the stream statistics as JSON
//
// Only the connection created a stream may push into or delete it. All its streams are
// dropped as soon as it disconnects.
type Handler struct {
	registry *Registry
	logger   zerolog.Logger
}

var (
	_ http.Handler      = new(Handler)
	_ http.Disconnector = new(Handler)
)

func NewHandler(registry *Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

func (h *Handler) OnRequest(request *http.Request) error {
	code, contentType, body := h.route(request)
	return http.Write(request.Client(), code, contentType, body, request.KeepAlive())
}

func (h *Handler) route(request *http.Request) (code status.Code, contentType string, body []byte) {
	name, ok := streamName(request.RequestTarget())
	if !ok {
		return status.NotFound, "", nil
	}

	session := SessionOf(request)

	switch request.Method() {
	case method.GET:
		stream, found := h.registry.Get(name)
		if !found {
			return status.NotFound, "", nil
		}

		data, err := json.ConfigDefault.Marshal(stream)
		if err != nil {
			return status.InternalServerError, "", nil
		}

		return status.OK, "application/json", data
	case method.PUT:
		params := createParams{ContentType: "application/octet-stream"}
		if len(request.Body()) > 0 {
			if err := request.JSON(&params); err != nil {
				if errors.Is(err, status.ErrUnsupportedMediaType) {
					return status.UnsupportedMediaType, "", nil
				}

				return status.BadRequest, "", nil
			}
		}

		_, err := h.registry.Create(Stream{
			Name:        name,
			Publisher:   session.ID,
			ContentType: params.ContentType,
			Bitrate:     params.Bitrate,
		})

		return codeOf(err, status.Created), "", nil
	case method.POST:
		payload, err := request.DecodedBody()
		if err != nil {
			return status.CodeOf(err), "", nil
		}

		_, err = h.registry.Push(name, session.ID, payload)
		return codeOf(err, status.NoContent), "", nil
	case method.DELETE:
		err := h.registry.Delete(name, session.ID)
		return codeOf(err, status.NoContent), "", nil
	default:
		return status.MethodNotAllowed, "", nil
	}
}

func (h *Handler) OnError(request *http.Request, err error) {
	h.logger.Debug().
		Str("method", request.MethodName()).
		Err(err).
		Msg("dropping malformed request")
}

func (h *Handler) OnDisconnect(request *http.Request) {
	session, ok := http.ExtensionAs[*Session](request)
	if !ok {
		return
	}

	if dropped := h.registry.DropPublisher(session.ID); dropped > 0 {
		h.logger.Info().
			Str("session", session.ID).
			Int("streams", dropped).
			Msg("publisher disconnected")
	}
}

func codeOf(err error, success status.Code) status.Code {
	switch {
	case err == nil:
		return success
	case errors.Is(err, ErrStreamExists):
		return status.Conflict
	case errors.Is(err, ErrNoSuchStream):
		return status.NotFound
	case errors.Is(err, ErrNotOwner):
		return status.Forbidden
	default:
		return status.InternalServerError
	}
}

func streamName(target string) (string, bool) {
	if query := strings.IndexByte(target, '?'); query != -1 {
		target = target[:query]
	}

	name, found := strings.CutPrefix(target, streamsPrefix)
	if !found || len(name) == 0 || strings.IndexByte(name, '/') != -1 {
		return "", false
	}

	return name, true
}
