package irq

import "testing"

func TestLevelAssertClear(t *testing.T) {
	var l Level
	if l.Raised() {
		t.Fatalf("new Level reports Raised")
	}
	l.Assert()
	if !l.Raised() {
		t.Fatalf("Assert didn't raise the line")
	}
	l.Clear()
	if l.Raised() {
		t.Fatalf("Clear didn't lower the line")
	}
}

func TestEdgeSignalConsume(t *testing.T) {
	var e Edge
	if e.Raised() {
		t.Fatalf("new Edge reports Raised")
	}
	e.Signal()
	if !e.Raised() {
		t.Fatalf("Signal didn't latch the edge")
	}
	// Raised is a pure read: repeated polling before Consume must keep
	// reporting the latched pulse.
	if !e.Raised() {
		t.Fatalf("Raised cleared itself without Consume")
	}
	e.Consume()
	if e.Raised() {
		t.Fatalf("Consume didn't clear the latch")
	}
}
