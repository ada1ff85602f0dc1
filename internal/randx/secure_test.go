package randx

import "testing"

func TestTransactionIDVaries(t *testing.T) {
	seen := make(map[uint16]bool, 64)
	for i := 0; i < 64; i++ {
		seen[TransactionID()] = true
	}
	if len(seen) < 32 {
		t.Fatalf("got only %d distinct IDs out of 64 draws, expected most to differ", len(seen))
	}
}
