package dac

import (
	"encoding/binary"
	"fmt"
)

// PointSize is the size in bytes of an encoded Point.
const PointSize = 16

// Point is a single sample as the DAC consumes it. The field order and
// widths follow the etherdream_point struct of the Ether Dream driver.
type Point struct {
	X, Y    int16
	R, G, B uint16
	I       uint16 // intensity, unused
	U1, U2  uint16 // reserved
}

// AppendBinary appends the little endian encoding of p to b.
func (p Point) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(p.X))
	b = binary.LittleEndian.AppendUint16(b, uint16(p.Y))
	b = binary.LittleEndian.AppendUint16(b, p.R)
	b = binary.LittleEndian.AppendUint16(b, p.G)
	b = binary.LittleEndian.AppendUint16(b, p.B)
	b = binary.LittleEndian.AppendUint16(b, p.I)
	b = binary.LittleEndian.AppendUint16(b, p.U1)
	b = binary.LittleEndian.AppendUint16(b, p.U2)
	return b
}

// Encode returns the wire encoding of points.
func Encode(points []Point) []byte {
	b := make([]byte, 0, len(points)*PointSize)
	for _, p := range points {
		b = p.AppendBinary(b)
	}
	return b
}

// Decode parses the wire encoding produced by Encode.
func Decode(b []byte) ([]Point, error) {
	if len(b)%PointSize != 0 {
		return nil, fmt.Errorf("dac: %d bytes is not a whole number of points", len(b))
	}
	points := make([]Point, len(b)/PointSize)
	for i := range points {
		o := b[i*PointSize:]
		points[i] = Point{
			X:  int16(binary.LittleEndian.Uint16(o[0:])),
			Y:  int16(binary.LittleEndian.Uint16(o[2:])),
			R:  binary.LittleEndian.Uint16(o[4:]),
			G:  binary.LittleEndian.Uint16(o[6:]),
			B:  binary.LittleEndian.Uint16(o[8:]),
			I:  binary.LittleEndian.Uint16(o[10:]),
			U1: binary.LittleEndian.Uint16(o[12:]),
			U2: binary.LittleEndian.Uint16(o[14:]),
		}
	}
	return points, nil
}
