package wire

import "encoding/binary"

const headerSize = 12

// Flags is the 16-bit bit-packed options field carried in every message
// header (RFC 1035 §4.1.1). Option-set operations (union, insert of an
// extra bit the caller requested) are plain bitwise OR on this type.
type Flags uint16

// Flag bits and field positions within Flags.
const (
	FlagResponse           Flags = 1 << 15 // QR
	FlagAuthoritative      Flags = 1 << 10 // AA
	FlagTruncated          Flags = 1 << 9  // TC
	FlagRecursionDesired   Flags = 1 << 8  // RD
	FlagRecursionAvailable Flags = 1 << 7  // RA

	opcodeShift = 11
	opcodeMask  = 0x0F
	rcodeMask   = 0x0F
)

// Opcode values (bits 14-11 of Flags).
const (
	OpcodeQuery  uint8 = 0
	OpcodeIQuery uint8 = 1
	OpcodeStatus uint8 = 2
	OpcodeNotify uint8 = 4
	OpcodeUpdate uint8 = 5
)

// Rcode values (bits 3-0 of Flags).
const (
	RcodeOK        uint8 = 0
	RcodeFormErr   uint8 = 1
	RcodeServFail  uint8 = 2
	RcodeNXDomain  uint8 = 3
	RcodeNotImpl   uint8 = 4
	RcodeRefused   uint8 = 5
)

// StandardQuery is the zero-value Flags: a query (QR=0), opcode=standard,
// no bits set. Callers OR in FlagRecursionDesired and any extra option
// bits on top of this.
const StandardQuery Flags = 0

func (f Flags) Response() bool           { return f&FlagResponse != 0 }
func (f Flags) Authoritative() bool       { return f&FlagAuthoritative != 0 }
func (f Flags) Truncated() bool           { return f&FlagTruncated != 0 }
func (f Flags) RecursionDesired() bool    { return f&FlagRecursionDesired != 0 }
func (f Flags) RecursionAvailable() bool  { return f&FlagRecursionAvailable != 0 }
func (f Flags) Opcode() uint8             { return uint8(f>>opcodeShift) & opcodeMask }
func (f Flags) Rcode() uint8              { return uint8(f) & rcodeMask }

// WithOpcode returns f with its opcode bits replaced.
func (f Flags) WithOpcode(op uint8) Flags {
	return (f &^ (opcodeMask << opcodeShift)) | Flags(op&opcodeMask)<<opcodeShift
}

// WithRcode returns f with its rcode bits replaced.
func (f Flags) WithRcode(rc uint8) Flags {
	return (f &^ rcodeMask) | Flags(rc&rcodeMask)
}

// Header is the fixed 12-byte preamble of every DNS message.
type Header struct {
	ID      uint16
	Flags   Flags
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

func (h Header) encode(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], h.ID)
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.Flags))
	binary.BigEndian.PutUint16(buf[4:6], h.QDCount)
	binary.BigEndian.PutUint16(buf[6:8], h.ANCount)
	binary.BigEndian.PutUint16(buf[8:10], h.NSCount)
	binary.BigEndian.PutUint16(buf[10:12], h.ARCount)
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, ErrMessageTooShort
	}
	return Header{
		ID:      binary.BigEndian.Uint16(buf[0:2]),
		Flags:   Flags(binary.BigEndian.Uint16(buf[2:4])),
		QDCount: binary.BigEndian.Uint16(buf[4:6]),
		ANCount: binary.BigEndian.Uint16(buf[6:8]),
		NSCount: binary.BigEndian.Uint16(buf[8:10]),
		ARCount: binary.BigEndian.Uint16(buf[10:12]),
	}, nil
}
