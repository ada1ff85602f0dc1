package wire

import "testing"

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		ID:      0x1234,
		Flags:   StandardQuery.WithOpcode(OpcodeQuery) | FlagRecursionDesired,
		QDCount: 1,
		ANCount: 0,
		NSCount: 0,
		ARCount: 0,
	}
	buf := make([]byte, headerSize)
	h.encode(buf)

	got, err := decodeHeader(buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
	if !got.Flags.RecursionDesired() {
		t.Fatalf("RecursionDesired() = false, want true")
	}
	if got.Flags.Response() {
		t.Fatalf("Response() = true, want false for a query")
	}
}

func TestHeaderFlagsAccessors(t *testing.T) {
	f := FlagResponse | FlagAuthoritative | FlagTruncated | FlagRecursionAvailable
	f = f.WithOpcode(OpcodeStatus).WithRcode(RcodeNXDomain)

	if !f.Response() {
		t.Error("Response() = false, want true")
	}
	if !f.Authoritative() {
		t.Error("Authoritative() = false, want true")
	}
	if !f.Truncated() {
		t.Error("Truncated() = false, want true")
	}
	if !f.RecursionAvailable() {
		t.Error("RecursionAvailable() = false, want true")
	}
	if f.Opcode() != OpcodeStatus {
		t.Errorf("Opcode() = %d, want %d", f.Opcode(), OpcodeStatus)
	}
	if f.Rcode() != RcodeNXDomain {
		t.Errorf("Rcode() = %d, want %d", f.Rcode(), RcodeNXDomain)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, err := decodeHeader(make([]byte, 11))
	if err != ErrMessageTooShort {
		t.Fatalf("err = %v, want ErrMessageTooShort", err)
	}
}
