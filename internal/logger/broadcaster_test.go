package logger

import (
	"testing"
)

type fakeHub struct {
	types    []string
	payloads []any
}

func (f *fakeHub) Broadcast(msgType string, payload any) error {
	f.types = append(f.types, msgType)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestStreamWriterParsesAndForwards(t *testing.T) {
	hub := &fakeHub{}
	w := NewStreamWriter(hub, 10)

	line := `{"time":"2026-08-01T12:00:00Z","level":"info","component":"downloader","message":"Submitted torrent","hash":"abc"}` + "\n"
	if _, err := w.Write([]byte(line)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(hub.types) != 1 || hub.types[0] != EventLogEntry {
		t.Fatalf("broadcast types = %v", hub.types)
	}
	entries := w.Recent()
	if len(entries) != 1 {
		t.Fatalf("expected 1 buffered entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "info" || e.Component != "downloader" || e.Message != "Submitted torrent" {
		t.Errorf("entry = %+v", e)
	}
	if e.Fields["hash"] != "abc" {
		t.Errorf("extra fields not kept: %+v", e.Fields)
	}
}

func TestStreamWriterDropsMalformedLines(t *testing.T) {
	w := NewStreamWriter(nil, 10)

	n, err := w.Write([]byte("not json\n"))
	if err != nil || n != len("not json\n") {
		t.Fatalf("Write = (%d, %v)", n, err)
	}
	if len(w.Recent()) != 0 {
		t.Error("malformed line should not be buffered")
	}
}

func TestRingBufferEviction(t *testing.T) {
	r := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	got := r.GetAll()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetAll = %v, want %v", got, want)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
}
