package trigger

import (
	"errors"
	"testing"
)

type fakeSerial struct {
	reply  []byte
	writes []string
	closed bool
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	if len(f.reply) == 0 {
		return 0, nil
	}
	n := copy(p, f.reply)
	f.reply = f.reply[n:]
	return n, nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakeSerial) Close() error {
	f.closed = true
	return nil
}

func TestDLP_Handshake_PingsThenSelectsBinaryAndClearsLines(t *testing.T) {
	port := &fakeSerial{reply: []byte("Q")}
	d, err := newDLPIO8G(port)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = d

	want := []string{"'", "\\", "QWERTYUI"}
	if len(port.writes) != len(want) {
		t.Fatalf("expected writes %q, got %q", want, port.writes)
	}
	for i := range want {
		if port.writes[i] != want[i] {
			t.Fatalf("write %d: expected %q, got %q", i, want[i], port.writes[i])
		}
	}
}

func TestDLP_NoPingReply_ClosesAndFails(t *testing.T) {
	port := &fakeSerial{reply: []byte("x")}
	if _, err := newDLPIO8G(port); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
	if !port.closed {
		t.Fatalf("expected port to be closed")
	}
}

func TestDLP_SetLevel_RaisesAndLowersChangedLinesOnly(t *testing.T) {
	port := &fakeSerial{reply: []byte("Q")}
	d, err := newDLPIO8G(port)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	port.writes = nil

	d.SetLevel(1)
	d.SetLevel(Idle)
	d.SetLevel(2)
	d.SetLevel(3)
	d.SetLevel(Idle)
	d.SetLevel(Idle)

	want := []string{"1", "Q", "2", "1", "QW"}
	if len(port.writes) != len(want) {
		t.Fatalf("expected writes %q, got %q", want, port.writes)
	}
	for i := range want {
		if port.writes[i] != want[i] {
			t.Fatalf("write %d: expected %q, got %q", i, want[i], port.writes[i])
		}
	}
}

func TestDLP_Close_LowersLines(t *testing.T) {
	port := &fakeSerial{reply: []byte("Q")}
	d, err := newDLPIO8G(port)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.SetLevel(0x80)
	port.writes = nil

	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(port.writes) != 1 || port.writes[0] != "I" {
		t.Fatalf("expected single write %q, got %q", "I", port.writes)
	}
	if !port.closed {
		t.Fatalf("expected port to be closed")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: unexpected error: %v", err)
	}
}

func TestOpenDLP_EmptyDevice_Unavailable(t *testing.T) {
	if _, err := Open("dlp"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
