package entity

import "testing"

func TestQueueStatusCanTransition(t *testing.T) {
	cases := []struct {
		from  QueueStatus
		to    QueueStatus
		valid bool
	}{
		{QueueStatusActive, QueueStatusPaused, true},
		{QueueStatusActive, QueueStatusClosed, true},
		{QueueStatusPaused, QueueStatusActive, true},
		{QueueStatusPaused, QueueStatusClosed, true},
		{QueueStatusClosed, QueueStatusActive, false},
		{QueueStatusClosed, QueueStatusPaused, false},
		{QueueStatusActive, QueueStatusActive, false},
		{QueueStatusClosed, QueueStatusClosed, false},
	}

	for _, tt := range cases {
		if got := tt.from.CanTransition(tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%q -> %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestQueueStatusValid(t *testing.T) {
	for _, status := range []QueueStatus{QueueStatusActive, QueueStatusPaused, QueueStatusClosed} {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	for _, status := range []QueueStatus{"", "open", "ACTIVE", "archived"} {
		if status.Valid() {
			t.Fatalf("expected %q to be invalid", status)
		}
	}
}

func TestQueueStatusIsOpen(t *testing.T) {
	if !QueueStatusActive.IsOpen() {
		t.Fatal("active queue should be open")
	}
	if !QueueStatusPaused.IsOpen() {
		t.Fatal("paused queue should still hold the open slot")
	}
	if QueueStatusClosed.IsOpen() {
		t.Fatal("closed queue should not be open")
	}
}
