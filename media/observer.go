package media

import (
	"github.com/rs/zerolog"
)

// Observer is notified about the lifecycle of the streams. Observers are called with the
// registry being locked, so they must not call back into it.
type Observer interface {
	// OnCreateStream is called right after the stream is registered. Returning an error
	// withdraws the stream.
	OnCreateStream(stream Stream) error
	OnDeleteStream(stream Stream)
	// OnFrame receives every frame pushed into the stream. The payload must be copied if
	// retained.
	OnFrame(stream Stream, frame Frame) error
}

// LogObserver reports every event into the logger.
type LogObserver struct {
	Logger zerolog.Logger
}

func (l LogObserver) OnCreateStream(stream Stream) error {
	l.Logger.Info().
		Str("stream", stream.Name).
		Str("publisher", stream.Publisher).
		Str("content_type", stream.ContentType).
		Msg("stream created")

	return nil
}

func (l LogObserver) OnDeleteStream(stream Stream) {
	l.Logger.Info().
		Str("stream", stream.Name).
		Uint64("frames", stream.Frames).
		Int64("bytes", stream.Bytes).
		Msg("stream deleted")
}

func (l LogObserver) OnFrame(stream Stream, frame Frame) error {
	l.Logger.Debug().
		Str("stream", stream.Name).
		Uint64("seq", frame.Sequence).
		Int("size", len(frame.Payload)).
		Msg("frame")

	return nil
}
