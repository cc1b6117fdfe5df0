package curves

import (
	"github.com/smallyu/go-ecc/pkg/ecc"
)

// SEC 1 point encoding tags.
const (
	tagInfinity       = 0x00
	tagCompressedEven = 0x02
	tagCompressedOdd  = 0x03
	tagUncompressed   = 0x04
)

// Bytes returns the uncompressed encoding 0x04 || x || y, with x and y
// fixed-width big-endian. The point at infinity encodes as the single byte
// 0x00.
func (p *Point) Bytes() []byte {
	if p.IsInfinity() {
		return []byte{tagInfinity}
	}
	n := p.curve.ByteLen()
	out := make([]byte, 1+2*n)
	out[0] = tagUncompressed
	copy(out[1:1+n], p.x.Bytes())
	copy(out[1+n:], p.y.Bytes())
	return out
}

// CompressedBytes returns 0x02/0x03 || x, the tag carrying the parity of y.
func (p *Point) CompressedBytes() []byte {
	if p.IsInfinity() {
		return []byte{tagInfinity}
	}
	n := p.curve.ByteLen()
	out := make([]byte, 1+n)
	out[0] = tagCompressedEven
	if p.y.IsOdd() {
		out[0] = tagCompressedOdd
	}
	copy(out[1:], p.x.Bytes())
	return out
}

// PointFromBytes decodes an uncompressed, compressed or infinity encoding.
// Coordinates must be canonical and the point must lie on c.
func (c *Curve) PointFromBytes(b []byte) (*Point, error) {
	if len(b) == 0 {
		return nil, ecc.NewError("curves.PointFromBytes", ecc.ErrInvalidEncoding, "empty input")
	}
	n := c.ByteLen()
	switch b[0] {
	case tagInfinity:
		if len(b) != 1 {
			return nil, ecc.NewError("curves.PointFromBytes", ecc.ErrInvalidEncoding, "trailing bytes after infinity tag")
		}
		return c.inf, nil

	case tagUncompressed:
		if len(b) != 1+2*n {
			return nil, ecc.Errorf("curves.PointFromBytes", ecc.ErrInvalidEncoding, "uncompressed point must be %d bytes, got %d", 1+2*n, len(b))
		}
		x, err := c.field.ElementFromBytes(b[1 : 1+n])
		if err != nil {
			return nil, err
		}
		y, err := c.field.ElementFromBytes(b[1+n:])
		if err != nil {
			return nil, err
		}
		return c.NewPoint(x.BigInt(), y.BigInt())

	case tagCompressedEven, tagCompressedOdd:
		if len(b) != 1+n {
			return nil, ecc.Errorf("curves.PointFromBytes", ecc.ErrInvalidEncoding, "compressed point must be %d bytes, got %d", 1+n, len(b))
		}
		x, err := c.field.ElementFromBytes(b[1:])
		if err != nil {
			return nil, err
		}
		y, ok := c.rhs(x).Sqrt()
		if !ok {
			return nil, ecc.Errorf("curves.PointFromBytes", ecc.ErrInvalidPoint, "no point with x = %s", x)
		}
		wantOdd := b[0] == tagCompressedOdd
		if y.IsOdd() != wantOdd {
			y = y.Neg()
		}
		if y.IsOdd() != wantOdd {
			return nil, ecc.NewError("curves.PointFromBytes", ecc.ErrInvalidPoint, "odd tag for y = 0")
		}
		return c.point(x, y), nil

	default:
		return nil, ecc.Errorf("curves.PointFromBytes", ecc.ErrInvalidEncoding, "unknown tag 0x%02x", b[0])
	}
}
