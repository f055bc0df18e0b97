package logger

import (
	"encoding/json"
	"sync"
)

const defaultBufferSize = 1000

// EventLogEntry is the event type used for streamed log entries.
const EventLogEntry = "logs:entry"

// Broadcaster pushes messages to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}

// LogEntry is a parsed log line for streaming.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// StreamWriter is an io.Writer log sink that keeps a ring of recent entries
// and forwards each one to a hub. The hub may be nil at construction and set
// once the server is up.
type StreamWriter struct {
	hub    Broadcaster
	buffer *RingBuffer[LogEntry]
	mu     sync.RWMutex
}

// NewStreamWriter creates a stream sink holding up to bufferSize entries.
func NewStreamWriter(hub Broadcaster, bufferSize int) *StreamWriter {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &StreamWriter{
		hub:    hub,
		buffer: NewRingBuffer[LogEntry](bufferSize),
	}
}

// SetHub sets the hub that receives streamed entries.
func (w *StreamWriter) SetHub(hub Broadcaster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hub = hub
}

// Write implements io.Writer. It receives JSON entries from zerolog;
// malformed lines are dropped.
func (w *StreamWriter) Write(p []byte) (int, error) {
	entry, err := parseLogEntry(p)
	if err != nil {
		return len(p), nil
	}

	w.buffer.Push(entry)

	w.mu.RLock()
	hub := w.hub
	w.mu.RUnlock()
	if hub != nil {
		hub.Broadcast(EventLogEntry, entry)
	}
	return len(p), nil
}

// Recent returns the buffered entries, oldest first.
func (w *StreamWriter) Recent() []LogEntry {
	return w.buffer.GetAll()
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{Fields: make(map[string]any)}
	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}
	for k, v := range raw {
		entry.Fields[k] = v
	}
	return entry, nil
}
