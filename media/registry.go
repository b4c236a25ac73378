package media

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrStreamExists = errors.New("stream already exists")
	ErrNoSuchStream = errors.New("no such stream")
	ErrNotOwner     = errors.New("stream belongs to another publisher")
)

// Stream describes a published stream.
type Stream struct {
	Name        string    `json:"name"`
	Publisher   string    `json:"publisher"`
	ContentType string    `json:"content_type"`
	Bitrate     int       `json:"bitrate,omitempty"`
	Frames      uint64    `json:"frames"`
	Bytes       int64     `json:"bytes"`
	Created     time.Time `json:"created"`
}

type Frame struct {
	Sequence uint64
	Payload  []byte
}

// Registry holds the streams, shared by all the connections.
type Registry struct {
	mu        sync.Mutex
	streams   map[string]*Stream
	observers []Observer
}

func NewRegistry(observers ...Observer) *Registry {
	return &Registry{
		streams:   make(map[string]*Stream),
		observers: observers,
	}
}

// Create registers a new stream. Name, Publisher, ContentType and Bitrate are taken from the
// passed value, the rest is reset.
func (r *Registry) Create(info Stream) (Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.streams[info.Name]; found {
		return Stream{}, ErrStreamExists
	}

	stream := &Stream{
		Name:        info.Name,
		Publisher:   info.Publisher,
		ContentType: info.ContentType,
		Bitrate:     info.Bitrate,
		Created:     time.Now(),
	}
	r.streams[stream.Name] = stream

	for i, observer := range r.observers {
		if err := observer.OnCreateStream(*stream); err != nil {
			for _, notified := range r.observers[:i] {
				notified.OnDeleteStream(*stream)
			}

			delete(r.streams, stream.Name)

			return Stream{}, err
		}
	}

	return *stream, nil
}

// Delete removes the stream on behalf of the publisher.
func (r *Registry) Delete(name, publisher string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, err := r.owned(name, publisher)
	if err != nil {
		return err
	}

	delete(r.streams, name)

	for _, observer := range r.observers {
		observer.OnDeleteStream(*stream)
	}

	return nil
}

// Push delivers the frame to the observers on behalf of the publisher.
func (r *Registry) Push(name, publisher string, payload []byte) (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, err := r.owned(name, publisher)
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Sequence: stream.Frames,
		Payload:  payload,
	}
	stream.Frames++
	stream.Bytes += int64(len(payload))

	for _, observer := range r.observers {
		if err = observer.OnFrame(*stream, frame); err != nil {
			return frame, err
		}
	}

	return frame, nil
}

// DropPublisher deletes all the streams of the publisher. Returns how many were deleted.
func (r *Registry) DropPublisher(publisher string) (dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, stream := range r.streams {
		if stream.Publisher != publisher {
			continue
		}

		delete(r.streams, name)
		dropped++

		for _, observer := range r.observers {
			observer.OnDeleteStream(*stream)
		}
	}

	return dropped
}

func (r *Registry) Get(name string) (Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, found := r.streams[name]
	if !found {
		return Stream{}, false
	}

	return *stream, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.streams)
}

func (r *Registry) owned(name, publisher string) (*Stream, error) {
	stream, found := r.streams[name]
	if !found {
		return nil, ErrNoSuchStream
	}

	if stream.Publisher != publisher {
		return nil, ErrNotOwner
	}

	return stream, nil
}
