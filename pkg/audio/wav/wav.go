// Package wav decodes and encodes RIFF/WAVE audio files.
//
// Decoded audio is exposed as a [Clip]: interleaved float32 samples
// normalized to [-1, 1] plus the sample rate and channel count.
//
// Supported encodings:
//
//	PCM integer:  8, 16, 24, 32 bit
//	IEEE float:   32, 64 bit
//	WAVE_FORMAT_EXTENSIBLE wrapping either of the above
//
// Chunks other than "fmt " and "data" are skipped. The "fmt " chunk may
// have any size, so files written by tools that append cbSize or extension
// fields decode the same as canonical 44-byte headers.
package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Sentinel errors.
var (
	// ErrInvalid is returned when the input is not a decodable WAVE file.
	ErrInvalid = errors.New("wav: invalid file")

	// ErrEmpty is returned when the file decodes to zero samples.
	ErrEmpty = errors.New("wav: no samples")
)

// maxFormatSize bounds the "fmt " chunk. Real chunks are 16 to 40 bytes.
const maxFormatSize = 64 << 10

// WAVE format tags.
const (
	formatPCM        = 0x0001
	formatIEEEFloat  = 0x0003
	formatExtensible = 0xFFFE
)

// Clip is a decoded block of audio.
type Clip struct {
	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the number of interleaved channels.
	Channels int

	// Samples holds interleaved samples in [-1, 1].
	// len(Samples) is always a multiple of Channels.
	Samples []float32
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Mono returns the channel-wise mean of the clip. For a mono clip the
// result is a copy of Samples.
func (c *Clip) Mono() []float32 {
	if c.Channels <= 1 {
		out := make([]float32, len(c.Samples))
		copy(out, c.Samples)
		return out
	}
	n := c.Frames()
	out := make([]float32, n)
	ch := c.Channels
	for i := range n {
		var sum float32
		for k := range ch {
			sum += c.Samples[i*ch+k]
		}
		out[i] = sum / float32(ch)
	}
	return out
}

type format struct {
	tag           uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

func (f format) bytesPerSample() int {
	return (f.bitsPerSample + 7) / 8
}

// Open decodes the WAVE file at path. The file is closed before Open
// returns on every path.
func Open(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads a complete WAVE stream from r.
func Decode(r io.Reader) (*Clip, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrInvalid, err)
	}
	if string(hdr[0:4]) != "RIFF" {
		return nil, fmt.Errorf("%w: missing RIFF header", ErrInvalid)
	}
	if string(hdr[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing WAVE identifier", ErrInvalid)
	}

	var (
		fmtChunk format
		foundFmt bool
		chunk    [8]byte
	)
	for {
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: missing data chunk", ErrInvalid)
			}
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			f, err := readFormat(r, size)
			if err != nil {
				return nil, err
			}
			fmtChunk = f
			foundFmt = true
		case "data":
			if !foundFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalid)
			}
			return readData(r, fmtChunk, size)
		default:
			if err := skip(r, size); err != nil {
				return nil, fmt.Errorf("%w: chunk %q: %w", ErrInvalid, id, err)
			}
		}
	}
}

func readFormat(r io.Reader, size int64) (format, error) {
	switch {
	case size < 16:
		return format{}, fmt.Errorf("%w: fmt chunk too small (%d bytes)", ErrInvalid, size)
	case size > maxFormatSize:
		return format{}, fmt.Errorf("%w: fmt chunk too large (%d bytes)", ErrInvalid, size)
	}
	buf, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return format{}, fmt.Errorf("%w: fmt chunk: %w", ErrInvalid, err)
	}
	if int64(len(buf)) < size {
		return format{}, fmt.Errorf("%w: fmt chunk truncated (%d of %d bytes)", ErrInvalid, len(buf), size)
	}
	if size%2 != 0 {
		if err := skip(r, 1); err != nil {
			return format{}, fmt.Errorf("%w: fmt chunk: %w", ErrInvalid, err)
		}
	}

	f := format{
		tag:           binary.LittleEndian.Uint16(buf[0:2]),
		channels:      int(binary.LittleEndian.Uint16(buf[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(buf[4:8])),
		bitsPerSample: int(binary.LittleEndian.Uint16(buf[14:16])),
	}
	if f.tag == formatExtensible {
		// cbSize(2) validBits(2) channelMask(4) subFormat GUID(16);
		// the first two GUID bytes carry the real format tag.
		if size < 26 {
			return format{}, fmt.Errorf("%w: extensible fmt chunk too small", ErrInvalid)
		}
		f.tag = binary.LittleEndian.Uint16(buf[24:26])
	}

	switch {
	case f.channels <= 0:
		return format{}, fmt.Errorf("%w: %d channels", ErrInvalid, f.channels)
	case f.sampleRate <= 0:
		return format{}, fmt.Errorf("%w: sample rate %d", ErrInvalid, f.sampleRate)
	}
	switch f.tag {
	case formatPCM:
		switch f.bitsPerSample {
		case 8, 16, 24, 32:
		default:
			return format{}, fmt.Errorf("%w: unsupported PCM depth %d", ErrInvalid, f.bitsPerSample)
		}
	case formatIEEEFloat:
		switch f.bitsPerSample {
		case 32, 64:
		default:
			return format{}, fmt.Errorf("%w: unsupported float depth %d", ErrInvalid, f.bitsPerSample)
		}
	default:
		return format{}, fmt.Errorf("%w: unsupported format tag 0x%04x", ErrInvalid, f.tag)
	}
	return f, nil
}

func readData(r io.Reader, f format, size int64) (*Clip, error) {
	frameBytes := int64(f.bytesPerSample() * f.channels)

	// Some writers leave the data size at 0 or 0xFFFFFFFF when streaming;
	// read to EOF in that case. A size past the end of a truncated file
	// keeps the complete frames that were read; the buffer grows with the
	// bytes actually present, never with the declared size.
	src := r
	if size != 0 && size != math.MaxUint32 {
		src = io.LimitReader(r, size)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: data chunk: %w", ErrInvalid, err)
	}

	frames := int64(len(data)) / frameBytes
	if frames == 0 {
		return nil, ErrEmpty
	}
	n := int(frames) * f.channels
	samples := make([]float32, n)
	bps := f.bytesPerSample()
	for i := range n {
		samples[i] = sampleAt(data[i*bps:], f)
	}
	return &Clip{
		SampleRate: f.sampleRate,
		Channels:   f.channels,
		Samples:    samples,
	}, nil
}

func sampleAt(b []byte, f format) float32 {
	switch f.tag {
	case formatIEEEFloat:
		if f.bitsPerSample == 64 {
			return float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	default:
		switch f.bitsPerSample {
		case 8:
			// 8-bit PCM is unsigned.
			return float32(int(b[0])-128) / 128.0
		case 16:
			return float32(int16(binary.LittleEndian.Uint16(b))) / 32768.0
		case 24:
			v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
			return float32(v) / 8388608.0
		default:
			return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648.0)
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n%2 != 0 {
		n++
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
