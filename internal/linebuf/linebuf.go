package linebuf

import "bytes"

// Accumulator is a growable buffer, collecting arbitrary chunks of data and giving them
// back line by line. It doesn't limit its own size, so the owner must check Len() against
// its policies.
//
// Lines and remainders returned are views into the internal memory and stay valid only until
// the next call to Append or Reset.
type Accumulator struct {
	memory []byte
	// offset points at the first unconsumed byte
	offset int
	// scanned is how many bytes after the offset are already known to contain no LF
	scanned int
}

func New(initialSize int) *Accumulator {
	return &Accumulator{
		memory: make([]byte, 0, initialSize),
	}
}

// Append stores the data. Already consumed bytes are dropped at this moment, so the memory
// never grows beyond the amount of data, which is still pending.
func (a *Accumulator) Append(data []byte) {
	if len(data) == 0 {
		return
	}

	if a.offset > 0 {
		n := copy(a.memory, a.memory[a.offset:])
		a.memory = a.memory[:n]
		a.offset = 0
	}

	a.memory = append(a.memory, data...)
}

// TakeLine returns the next complete line, terminated either by CRLF or a bare LF, with the
// terminator being stripped. If no complete line is buffered yet, nothing is consumed and
// false is returned.
func (a *Accumulator) TakeLine() (line []byte, ok bool) {
	pending := a.memory[a.offset:]
	lf := bytes.IndexByte(pending[a.scanned:], '\n')
	if lf == -1 {
		a.scanned = len(pending)
		return nil, false
	}

	lf += a.scanned
	line = pending[:lf]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	a.offset += lf + 1
	a.scanned = 0

	return line, true
}

// Remainder exposes all the unconsumed bytes without consuming them.
func (a *Accumulator) Remainder() []byte {
	return a.memory[a.offset:]
}

// Consume marks the first n bytes of the remainder as consumed. n is clamped to the
// remainder length.
func (a *Accumulator) Consume(n int) {
	if pending := a.Len(); n > pending {
		n = pending
	}

	a.offset += n
	if a.scanned -= n; a.scanned < 0 {
		a.scanned = 0
	}
}

// Len returns the number of unconsumed bytes.
func (a *Accumulator) Len() int {
	return len(a.memory) - a.offset
}

// Reset drops everything, keeping the allocated memory for further use.
func (a *Accumulator) Reset() {
	a.memory = a.memory[:0]
	a.offset = 0
	a.scanned = 0
}
