package progress

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEmitDropsOnFullSink(t *testing.T) {
	ch := make(chan Event) // unbuffered, no receiver
	sink := Sink(ch)

	done := make(chan struct{})
	go func() {
		Emit(sink, 1, 10, "/a")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Emit() on a sink with no receiver must not block")
	}
}

func TestEmitNilSink(t *testing.T) {
	Emit(nil, 1, 10, "/a") // must not panic
}

func TestEmitDeliversToReadySink(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(Sink(ch), 3, 10, "/b")

	select {
	case ev := <-ch:
		if ev.Current != 3 || ev.Total != 10 || ev.File != "/b" {
			t.Errorf("Emit() produced %+v, want {3 10 /b}", ev)
		}
	default:
		t.Fatalf("Emit() did not deliver to a buffered sink with room")
	}
}

func TestJSONLWriterFraming(t *testing.T) {
	ch := make(chan Event, 2)
	ch <- Event{Current: 1, Total: 5, File: "/a"}
	ch <- Event{Current: 2, Total: 5, File: "/b"}
	close(ch)

	var buf bytes.Buffer
	if err := JSONLWriter(ch, &buf); err != nil {
		t.Fatalf("JSONLWriter() failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	if ev.Current != 1 || ev.Total != 5 || ev.File != "/a" {
		t.Errorf("line 1 = %+v, want {1 5 /a}", ev)
	}
}

func TestDisabledBarIsNoop(t *testing.T) {
	b := New(false, -1)
	// None of these should panic on a disabled bar.
	b.Set(5)
	b.Describe(fmtStringer("x"))
	b.Finish(fmtStringer("done"))
}

type fmtStringer string

func (s fmtStringer) String() string { return string(s) }
