package utils

import (
	"io"
	"sync"
)

// Flusher is implemented by buffered destinations such as bufio.Writer.
type Flusher interface {
	Flush() error
}

// FlushingWriter forwards every write and flushes buffered destinations immediately afterwards.
type FlushingWriter struct {
	destination io.Writer
	writeLock   sync.Mutex
}

// NewFlushingWriter wraps destination unless it is nil or already a FlushingWriter.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return destination
	default:
		return &FlushingWriter{destination: destination}
	}
}

// Write implements io.Writer.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	writer.writeLock.Lock()
	defer writer.writeLock.Unlock()

	written, writeError := writer.destination.Write(data)
	if writeError != nil {
		return written, writeError
	}
	if flusher, buffered := writer.destination.(Flusher); buffered {
		return written, flusher.Flush()
	}
	return written, nil
}
