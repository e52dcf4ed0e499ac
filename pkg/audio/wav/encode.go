package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoding selects the sample encoding written by [Encode].
type Encoding int

const (
	// PCM16 writes 16-bit signed integer samples.
	PCM16 Encoding = iota
	// Float32 writes 32-bit IEEE float samples.
	Float32
)

// Encode writes clip to w as a canonical 44-byte-header WAVE file.
func Encode(w io.Writer, clip *Clip, enc Encoding) error {
	if clip.Channels <= 0 || clip.SampleRate <= 0 {
		return fmt.Errorf("wav: encode: invalid clip (channels=%d, rate=%d)", clip.Channels, clip.SampleRate)
	}

	var (
		tag  uint16
		bits int
	)
	switch enc {
	case PCM16:
		tag, bits = formatPCM, 16
	case Float32:
		tag, bits = formatIEEEFloat, 32
	default:
		return fmt.Errorf("wav: encode: unknown encoding %d", enc)
	}

	bps := bits / 8
	dataSize := len(clip.Samples) * bps
	blockAlign := clip.Channels * bps

	hdr := make([]byte, 44)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], tag)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(clip.Channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(clip.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(clip.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(bits))
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	data := make([]byte, dataSize)
	for i, s := range clip.Samples {
		switch enc {
		case PCM16:
			binary.LittleEndian.PutUint16(data[i*2:], uint16(toInt16(s)))
		case Float32:
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
		}
	}
	_, err := w.Write(data)
	return err
}

func toInt16(s float32) int16 {
	switch {
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return math.MinInt16
	}
	return int16(s * 32767)
}
