package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/vovakirdan/tui-cinema/internal/logging"
)

// pcmBytes encodes n stereo frames whose left channel counts up from 1.
func pcmBytes(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		binary.Write(&buf, binary.LittleEndian, int16(i+1))
		binary.Write(&buf, binary.LittleEndian, int16(-(i + 1)))
	}
	return buf.Bytes()
}

func TestPCMStreamerDecodes(t *testing.T) {
	data := []byte{0x00, 0x40, 0x00, 0x80} // 16384, -32768
	p := NewPCMStreamer(bytes.NewReader(data))

	samples := make([][2]float64, 4)
	n, ok := p.Stream(samples)
	if n != 1 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (1, true)", n, ok)
	}
	if samples[0][0] != 0.5 || samples[0][1] != -1 {
		t.Errorf("sample = %v, expected [0.5 -1]", samples[0])
	}

	n, ok = p.Stream(samples)
	if n != 0 || ok {
		t.Errorf("Stream() at end = (%d, %v), expected (0, false)", n, ok)
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, expected nil at EOF", p.Err())
	}
}

func TestPCMStreamerDropsPartialSample(t *testing.T) {
	p := NewPCMStreamer(bytes.NewReader(append(pcmBytes(2), 0x01, 0x02)))
	samples := make([][2]float64, 8)
	n, _ := p.Stream(samples)
	if n != 2 {
		t.Errorf("Stream() = %d samples, expected 2", n)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("pipe broke") }

func TestPCMStreamerReportsReadError(t *testing.T) {
	p := NewPCMStreamer(errReader{})
	n, ok := p.Stream(make([][2]float64, 4))
	if n != 0 || ok {
		t.Errorf("Stream() = (%d, %v), expected (0, false)", n, ok)
	}
	if p.Err() == nil {
		t.Error("Err() should report the read error")
	}
}

func TestGateSilenceWithoutBudget(t *testing.T) {
	g := NewGate(NewPCMStreamer(bytes.NewReader(pcmBytes(100))), 1000)

	samples := make([][2]float64, 10)
	for i := range samples {
		samples[i] = [2]float64{9, 9}
	}
	n, ok := g.Stream(samples)
	if n != 10 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (10, true)", n, ok)
	}
	for i, s := range samples {
		if s != [2]float64{} {
			t.Errorf("sample %d = %v, expected silence", i, s)
		}
	}
}

func TestGateReleasesBudget(t *testing.T) {
	g := NewGate(NewPCMStreamer(bytes.NewReader(pcmBytes(100))), 1000)
	g.Release(3)

	samples := make([][2]float64, 5)
	n, ok := g.Stream(samples)
	if n != 5 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (5, true)", n, ok)
	}
	for i := 0; i < 3; i++ {
		if expected := float64(i+1) / 32768; samples[i][0] != expected {
			t.Errorf("sample %d = %v, expected %v", i, samples[i][0], expected)
		}
	}
	if samples[3] != [2]float64{} || samples[4] != [2]float64{} {
		t.Error("samples past the budget should be silent")
	}
	if g.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", g.Pending())
	}

	// Budget left over is kept for the next callback.
	g.Release(8)
	g.Stream(samples)
	if g.Pending() != 3 {
		t.Errorf("Pending() = %d, expected 3", g.Pending())
	}
	g.Stream(samples)
	if samples[0][0] != float64(9)/32768 {
		t.Errorf("resumed sample = %v, expected frame 9", samples[0][0])
	}
}

func TestGateDropsExcessLag(t *testing.T) {
	g := NewGate(NewPCMStreamer(bytes.NewReader(pcmBytes(100))), 10)
	g.Release(25)

	if g.Pending() != 10 {
		t.Errorf("Pending() = %d, expected 10", g.Pending())
	}
	samples := make([][2]float64, 1)
	g.Stream(samples)
	if expected := float64(16) / 32768; samples[0][0] != expected {
		t.Errorf("first sample after skip = %v, expected frame 16", samples[0][0])
	}
}

func TestGateExhaustion(t *testing.T) {
	g := NewGate(NewPCMStreamer(bytes.NewReader(pcmBytes(4))), 100)
	g.Release(10)

	samples := make([][2]float64, 8)
	n, ok := g.Stream(samples)
	if n != 8 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (8, true)", n, ok)
	}
	if !g.Done() {
		t.Error("Done() should be true after the source ran out")
	}
	if n, ok := g.Stream(samples); n != 0 || ok {
		t.Errorf("Stream() after exhaustion = (%d, %v), expected (0, false)", n, ok)
	}

	g.Release(10)
	if g.Pending() != 6 {
		t.Errorf("Pending() = %d, expected unchanged 6 after exhaustion", g.Pending())
	}
}

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestPlayerPullFrameCarriesFractions(t *testing.T) {
	stream := &closeCounter{Reader: bytes.NewReader(pcmBytes(10))}
	// 44100 / 29.97 = 1471.47 samples per frame
	p := newPlayer(stream, 29.97, logging.Discard())

	total := 0
	for i := 0; i < 100; i++ {
		before := p.gate.budget
		if err := p.PullFrame(); err != nil {
			t.Fatalf("PullFrame() failed: %v", err)
		}
		total += p.gate.budget - before
		p.gate.budget = 0
	}
	fps := 29.97
	expected := int(100 * float64(SampleRate) / fps)
	if total < expected-1 || total > expected+1 {
		t.Errorf("released %d samples over 100 frames, expected about %d", total, expected)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	p.Close()
	if stream.closed != 1 {
		t.Errorf("stream closed %d times, expected 1", stream.closed)
	}
}

func TestPlayerPullFrameReportsDecodeError(t *testing.T) {
	p := newPlayer(io.NopCloser(errReader{}), 30, logging.Discard())
	p.gate.Release(1)
	p.gate.Stream(make([][2]float64, 4))

	if err := p.PullFrame(); err == nil {
		t.Error("PullFrame() should fail after a decode error")
	}
}
