package remote

import (
	"errors"
	"fmt"
)

// ErrProtocol reports a malformed pkt-line stream, a missing service
// preamble, or an unexpected end of a wire response.
var ErrProtocol = errors.New("protocol error")

// maxPktLineSize is the largest pkt-line the protocol allows, length prefix
// included.
const maxPktLineSize = 65520

const hexDigits = "0123456789abcdef"

// appendPktLine appends line framed with its 4-hex-digit total length.
func appendPktLine(dst []byte, line string) []byte {
	n := len(line) + 4
	dst = append(dst,
		hexDigits[n>>12&0xf],
		hexDigits[n>>8&0xf],
		hexDigits[n>>4&0xf],
		hexDigits[n&0xf],
	)
	return append(dst, line...)
}

// appendFlushPkt appends the zero-length flush marker.
func appendFlushPkt(dst []byte) []byte {
	return append(dst, "0000"...)
}

// pktScanner walks a pkt-line stream held fully in memory. It owns its
// position; callers never see raw offsets.
type pktScanner struct {
	buf []byte
	pos int
}

// next returns the next pkt-line payload, or flush=true for a flush marker.
// Truncation and invalid length prefixes are ErrProtocol.
func (s *pktScanner) next() (line []byte, flush bool, err error) {
	if s.pos+4 > len(s.buf) {
		return nil, false, fmt.Errorf("%w: unexpected end of pkt-line stream at offset %d", ErrProtocol, s.pos)
	}
	n, err := parsePktLen(s.buf[s.pos : s.pos+4])
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		s.pos += 4
		return nil, true, nil
	}
	if n < 4 || n > maxPktLineSize {
		return nil, false, fmt.Errorf("%w: invalid pkt-line length %q", ErrProtocol, s.buf[s.pos:s.pos+4])
	}
	if s.pos+n > len(s.buf) {
		return nil, false, fmt.Errorf("%w: pkt-line of %d bytes truncated at offset %d", ErrProtocol, n, s.pos)
	}
	line = s.buf[s.pos+4 : s.pos+n]
	s.pos += n
	return line, false, nil
}

// rest returns the unconsumed remainder of the stream.
func (s *pktScanner) rest() []byte {
	return s.buf[s.pos:]
}

func parsePktLen(prefix []byte) (int, error) {
	n := 0
	for _, b := range prefix {
		var d int
		switch {
		case b >= '0' && b <= '9':
			d = int(b - '0')
		case b >= 'a' && b <= 'f':
			d = int(b-'a') + 10
		case b >= 'A' && b <= 'F':
			d = int(b-'A') + 10
		default:
			return 0, fmt.Errorf("%w: invalid pkt-line length %q", ErrProtocol, prefix)
		}
		n = n<<4 | d
	}
	return n, nil
}

// trimLF strips one trailing newline; pkt-line payloads conventionally end
// with one but are not required to.
func trimLF(line []byte) []byte {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		return line
	}
	return line[:len(line)-1]
}
