package wire

import (
	"encoding/binary"
	"fmt"
	"net"
)

// maxCompressionDepth bounds how many pointers readName will follow while
// decoding one name, as a defense-in-depth guard alongside the
// visited-offset cycle check below (mirrors the belt-and-suspenders style
// of the pre-existing packet parser this package replaces).
const maxCompressionDepth = 20

// decoder walks a single message buffer front to back, jumping backward
// into it (never forward) to resolve compression pointers. It keeps the
// whole buffer in scope for the entire parse, not just the slice for the
// section currently being read, because a pointer can target any earlier
// offset in the message.
type decoder struct {
	buf []byte
	pos int
}

// Decode parses raw into a Message. If the 12-byte header itself cannot be
// read, the returned error is a plain *ProtocolError — there is no ID to
// attribute the failure to, so nothing upstream can treat it as a single
// query's failure. Once the header is recovered, any later failure is
// wrapped in *MessageError so the caller can fail just that one query.
func Decode(raw []byte) (*Message, error) {
	hdr, err := decodeHeader(raw)
	if err != nil {
		return nil, protoErr("header", err)
	}

	d := &decoder{buf: raw, pos: headerSize}
	m := &Message{Header: hdr}

	for i := 0; i < int(hdr.QDCount); i++ {
		q, err := d.readQuestion()
		if err != nil {
			return nil, &MessageError{Header: hdr, Inner: protoErr(fmt.Sprintf("question %d", i), err)}
		}
		m.Questions = append(m.Questions, q)
	}

	for i := 0; i < int(hdr.ANCount); i++ {
		rr, err := d.readRR()
		if err != nil {
			return nil, &MessageError{Header: hdr, Inner: protoErr(fmt.Sprintf("answer %d", i), err)}
		}
		m.Answers = append(m.Answers, rr)
	}

	for i := 0; i < int(hdr.NSCount); i++ {
		rr, err := d.readRR()
		if err != nil {
			return nil, &MessageError{Header: hdr, Inner: protoErr(fmt.Sprintf("authority %d", i), err)}
		}
		m.Authorities = append(m.Authorities, rr)
	}

	for i := 0; i < int(hdr.ARCount); i++ {
		rr, err := d.readRR()
		if err != nil {
			return nil, &MessageError{Header: hdr, Inner: protoErr(fmt.Sprintf("additional %d", i), err)}
		}
		m.Additionals = append(m.Additionals, rr)
	}

	return m, nil
}

func (d *decoder) readQuestion() (Question, error) {
	name, err := d.readName()
	if err != nil {
		return Question{}, err
	}
	if d.pos+4 > len(d.buf) {
		return Question{}, ErrBufferOverrun
	}
	typ := RRType(binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2]))
	class := Class(binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4]))
	d.pos += 4
	return Question{Name: name, Type: typ, Class: class}, nil
}

func (d *decoder) readRR() (Record, error) {
	name, err := d.readName()
	if err != nil {
		return Record{}, err
	}
	if d.pos+10 > len(d.buf) {
		return Record{}, ErrBufferOverrun
	}
	typ := RRType(binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2]))
	class := Class(binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4]))
	ttl := binary.BigEndian.Uint32(d.buf[d.pos+4 : d.pos+8])
	rdlen := int(binary.BigEndian.Uint16(d.buf[d.pos+8 : d.pos+10]))
	d.pos += 10

	if d.pos+rdlen > len(d.buf) {
		return Record{}, ErrBufferOverrun
	}
	rdataStart := d.pos

	data, err := d.readRData(typ, rdlen)
	if err != nil {
		return Record{}, err
	}
	if d.pos != rdataStart+rdlen {
		return Record{}, ErrRDataLength
	}

	return Record{Header: RRHeader{Name: name, Type: typ, Class: class, TTL: ttl}, Data: data}, nil
}

func (d *decoder) readRData(typ RRType, rdlen int) (RData, error) {
	switch typ {
	case TypeA:
		if rdlen != 4 {
			return nil, ErrRDataLength
		}
		ip := make(net.IP, 4)
		copy(ip, d.buf[d.pos:d.pos+4])
		d.pos += 4
		return A{Addr: ip}, nil

	case TypeAAAA:
		if rdlen != 16 {
			return nil, ErrRDataLength
		}
		ip := make(net.IP, 16)
		copy(ip, d.buf[d.pos:d.pos+16])
		d.pos += 16
		return AAAA{Addr: ip}, nil

	case TypeCNAME:
		target, err := d.readName()
		if err != nil {
			return nil, err
		}
		return CNAME{Target: target}, nil

	case TypeNS:
		target, err := d.readName()
		if err != nil {
			return nil, err
		}
		return NS{Target: target}, nil

	case TypePTR:
		target, err := d.readName()
		if err != nil {
			return nil, err
		}
		return PTR{Target: target}, nil

	case TypeMX:
		if rdlen < 3 || d.pos+2 > len(d.buf) {
			return nil, ErrRDataLength
		}
		pref := binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2])
		d.pos += 2
		target, err := d.readName()
		if err != nil {
			return nil, err
		}
		return MX{Preference: pref, Target: target}, nil

	case TypeSRV:
		if rdlen < 7 || d.pos+6 > len(d.buf) {
			return nil, ErrRDataLength
		}
		prio := binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2])
		weight := binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4])
		port := binary.BigEndian.Uint16(d.buf[d.pos+4 : d.pos+6])
		d.pos += 6
		target, err := d.readName()
		if err != nil {
			return nil, err
		}
		return SRV{Priority: prio, Weight: weight, Port: port, Target: target}, nil

	case TypeTXT:
		var strs [][]byte
		remaining := rdlen
		for remaining > 0 {
			if d.pos >= len(d.buf) {
				return nil, ErrBufferOverrun
			}
			l := int(d.buf[d.pos])
			d.pos++
			remaining--
			if l > remaining || d.pos+l > len(d.buf) {
				return nil, ErrRDataLength
			}
			s := make([]byte, l)
			copy(s, d.buf[d.pos:d.pos+l])
			d.pos += l
			remaining -= l
			strs = append(strs, s)
		}
		return TXT{Strings: strs}, nil

	default:
		if d.pos+rdlen > len(d.buf) {
			return nil, ErrBufferOverrun
		}
		raw := make([]byte, rdlen)
		copy(raw, d.buf[d.pos:d.pos+rdlen])
		d.pos += rdlen
		return Opaque{RRType: typ, Raw: raw}, nil
	}
}

// readName decodes one domain name starting at d.pos, following
// compression pointers as needed, and leaves d.pos positioned just past
// the name as it appeared at the call site (i.e. past a 2-byte pointer,
// not past whatever it pointed at).
func (d *decoder) readName() (string, error) {
	var labels []string
	visited := make(map[int]bool)
	origOffset := d.pos
	offset := d.pos
	jumped := false
	depth := 0
	totalBytes := 0

	for {
		if offset < 0 || offset >= len(d.buf) {
			return "", ErrBufferOverrun
		}
		length := int(d.buf[offset])

		switch {
		case length == 0:
			if !jumped {
				d.pos = offset + 1
			}
			if len(labels) == 0 {
				return ".", nil
			}
			return joinLabels(labels), nil

		case length&0xC0 == 0xC0:
			if offset+1 >= len(d.buf) {
				return "", ErrBufferOverrun
			}
			ptr := int(d.buf[offset]&0x3F)<<8 | int(d.buf[offset+1])
			if ptr < headerSize {
				return "", ErrPointerIntoHeader
			}
			if ptr >= origOffset || visited[ptr] {
				return "", ErrPointerCycle
			}
			depth++
			if depth > maxCompressionDepth {
				return "", ErrPointerCycle
			}
			visited[ptr] = true
			if !jumped {
				d.pos = offset + 2
				jumped = true
			}
			offset = ptr
			continue

		default:
			if length > maxLabelLength {
				return "", ErrLabelLength
			}
			offset++
			if offset+length > len(d.buf) {
				return "", ErrBufferOverrun
			}
			totalBytes += length + 1
			if totalBytes > maxNameLength {
				return "", ErrNameTooLong
			}
			label := make([]byte, length)
			copy(label, d.buf[offset:offset+length])
			labels = append(labels, string(label))
			offset += length
		}
	}
}
