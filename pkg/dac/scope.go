package dac

import (
	"encoding/binary"
	"math"
)

// StereoFrameSize is the size of one stereo float32 sample frame.
const StereoFrameSize = 8

// AppendStereo appends frame to buf as interleaved little-endian float32
// stereo samples at rate samples per second, X on the left channel and
// Y on the right, so that an oscilloscope in XY mode traces the image.
// Points are written at pps and resampled to rate by nearest neighbour.
// Blanked points are held at the previous lit position.
func AppendStereo(buf []byte, frame []Point, pps, rate int) []byte {
	if len(frame) == 0 || pps <= 0 || rate <= 0 {
		return buf
	}
	samples := len(frame) * rate / pps
	var x, y float32
	for i := 0; i < samples; i++ {
		p := frame[i*pps/rate]
		if p.R|p.G|p.B != 0 || i == 0 {
			x, y = float32(p.X)/math.MaxInt16, float32(p.Y)/math.MaxInt16
		}
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(y))
	}
	return buf
}
