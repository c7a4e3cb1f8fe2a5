// Package audio plays a video's soundtrack in step with displayed frames.
//
// The track is decoded to raw PCM by an ffmpeg subprocess, wrapped in a beep
// streamer and released to the speaker one video frame's worth at a time, so
// pausing or slowing the picture holds the sound with it.
package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep"
)

const bytesPerFrame = 4 // s16le, two channels

// PCMStreamer decodes interleaved signed 16-bit little-endian stereo samples.
type PCMStreamer struct {
	r   *bufio.Reader
	err error
	buf [bytesPerFrame]byte
}

var _ beep.Streamer = (*PCMStreamer)(nil)

// NewPCMStreamer creates a streamer reading s16le stereo from r.
func NewPCMStreamer(r io.Reader) *PCMStreamer {
	return &PCMStreamer{r: bufio.NewReaderSize(r, 64*1024)}
}

// Stream fills samples until the input ends. A trailing partial sample is
// discarded.
func (p *PCMStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if p.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if _, err := io.ReadFull(p.r, p.buf[:]); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				p.err = err
			}
			return n, n > 0
		}
		l := int16(binary.LittleEndian.Uint16(p.buf[0:2]))
		r := int16(binary.LittleEndian.Uint16(p.buf[2:4]))
		samples[n][0] = float64(l) / 32768
		samples[n][1] = float64(r) / 32768
		n++
	}
	return n, true
}

// Err returns the first non-EOF read error.
func (p *PCMStreamer) Err() error {
	return p.err
}
