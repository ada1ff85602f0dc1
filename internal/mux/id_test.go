package mux

import "testing"

func TestIDAllocatorSkipsCollisions(t *testing.T) {
	a := idAllocator{next: 5}
	inFlight := map[uint16]*pendingQuery{5: {}, 6: {}}

	id, ok := a.allocate(inFlight)
	if !ok {
		t.Fatal("allocate failed with free IDs available")
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7 (5 and 6 taken)", id)
	}
}

func TestIDAllocatorWrapsAround(t *testing.T) {
	a := idAllocator{next: 65535}
	inFlight := map[uint16]*pendingQuery{}

	id, ok := a.allocate(inFlight)
	if !ok || id != 65535 {
		t.Fatalf("id, ok = %d, %v, want 65535, true", id, ok)
	}

	id, ok = a.allocate(inFlight)
	if !ok || id != 0 {
		t.Fatalf("id, ok = %d, %v, want 0, true after wraparound", id, ok)
	}
}

func TestIDAllocatorExhaustion(t *testing.T) {
	a := idAllocator{next: 0}
	inFlight := make(map[uint16]*pendingQuery, 65536)
	for i := 0; i < 65536; i++ {
		inFlight[uint16(i)] = &pendingQuery{}
	}

	if _, ok := a.allocate(inFlight); ok {
		t.Fatal("allocate succeeded with every ID already in flight")
	}
}

func TestIDAllocatorExhaustionLeavesOneFree(t *testing.T) {
	a := idAllocator{next: 0}
	inFlight := make(map[uint16]*pendingQuery, 65535)
	for i := 0; i < 65536; i++ {
		if i == 1000 {
			continue
		}
		inFlight[uint16(i)] = &pendingQuery{}
	}

	id, ok := a.allocate(inFlight)
	if !ok || id != 1000 {
		t.Fatalf("id, ok = %d, %v, want 1000, true", id, ok)
	}
}
