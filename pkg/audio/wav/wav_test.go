package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDecodePCM16(t *testing.T) {
	clip := &Clip{SampleRate: 16000, Channels: 1, Samples: []float32{0, 0.5, -0.5, 0.25}}
	var buf bytes.Buffer
	if err := Encode(&buf, clip, PCM16); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SampleRate != 16000 || got.Channels != 1 {
		t.Fatalf("format = %d Hz / %d ch, want 16000 Hz / 1 ch", got.SampleRate, got.Channels)
	}
	if len(got.Samples) != 4 {
		t.Fatalf("len(Samples) = %d, want 4", len(got.Samples))
	}
	for i, want := range clip.Samples {
		if math.Abs(float64(got.Samples[i]-want)) > 1.0/16384 {
			t.Errorf("Samples[%d] = %f, want ~%f", i, got.Samples[i], want)
		}
	}
}

func TestDecodeFloat32Exact(t *testing.T) {
	clip := &Clip{SampleRate: 22050, Channels: 2, Samples: []float32{0.1, -0.1, 0.3, 0.3}}
	var buf bytes.Buffer
	if err := Encode(&buf, clip, Float32); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range clip.Samples {
		if got.Samples[i] != want {
			t.Errorf("Samples[%d] = %v, want %v", i, got.Samples[i], want)
		}
	}
	if got.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", got.Frames())
	}
}

// buildWAV assembles a WAVE file from raw chunks so tests can exercise
// layouts Encode never produces.
func buildWAV(chunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.Write(c)
	}
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func chunk(id string, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.LittleEndian, uint32(len(payload)))
	b.Write(payload)
	if len(payload)%2 != 0 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

func fmtPayload(tag uint16, channels, rate, bits int, extra ...byte) []byte {
	var b bytes.Buffer
	bps := bits / 8
	binary.Write(&b, binary.LittleEndian, tag)
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*bps))
	binary.Write(&b, binary.LittleEndian, uint16(channels*bps))
	binary.Write(&b, binary.LittleEndian, uint16(bits))
	b.Write(extra)
	return b.Bytes()
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	data := []byte{0x00, 0x40, 0x00, 0xC0} // 0.5, -0.5
	file := buildWAV(
		chunk("fmt ", fmtPayload(formatPCM, 1, 8000, 16, 0, 0)), // 18-byte fmt with cbSize
		chunk("LIST", []byte("odd")),
		chunk("data", data),
	)
	clip, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(clip.Samples) != 2 || clip.Samples[0] != 0.5 || clip.Samples[1] != -0.5 {
		t.Errorf("Samples = %v, want [0.5 -0.5]", clip.Samples)
	}
}

func TestDecode24Bit(t *testing.T) {
	// 0x400000 = 0.5, 0xC00000 = -0.5
	data := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}
	file := buildWAV(chunk("fmt ", fmtPayload(formatPCM, 1, 48000, 24)), chunk("data", data))
	clip, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Samples[0] != 0.5 || clip.Samples[1] != -0.5 {
		t.Errorf("Samples = %v, want [0.5 -0.5]", clip.Samples)
	}
}

func TestDecodeExtensibleFloat(t *testing.T) {
	ext := make([]byte, 24)
	binary.LittleEndian.PutUint16(ext[0:2], 22) // cbSize
	binary.LittleEndian.PutUint16(ext[2:4], 32) // valid bits
	binary.LittleEndian.PutUint16(ext[8:10], formatIEEEFloat)
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(0.75))

	file := buildWAV(chunk("fmt ", fmtPayload(formatExtensible, 1, 44100, 32, ext...)), chunk("data", data))
	clip, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Samples[0] != 0.75 {
		t.Errorf("Samples[0] = %v, want 0.75", clip.Samples[0])
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", nil, ErrInvalid},
		{"not riff", []byte("this is definitely not a wave file"), ErrInvalid},
		{"not wave", append([]byte("RIFF\x04\x00\x00\x00"), []byte("AVI ")...), ErrInvalid},
		{"missing data", buildWAV(chunk("fmt ", fmtPayload(formatPCM, 1, 8000, 16))), ErrInvalid},
		{"data before fmt", buildWAV(chunk("data", []byte{0, 0})), ErrInvalid},
		{"unsupported tag", buildWAV(chunk("fmt ", fmtPayload(0x0055, 1, 8000, 16)), chunk("data", []byte{0, 0})), ErrInvalid},
		{"zero channels", buildWAV(chunk("fmt ", fmtPayload(formatPCM, 0, 8000, 16)), chunk("data", []byte{0, 0})), ErrInvalid},
		{"empty data", buildWAV(chunk("fmt ", fmtPayload(formatPCM, 1, 8000, 16)), chunk("data", nil)), ErrEmpty},
		{"partial frame", buildWAV(chunk("fmt ", fmtPayload(formatPCM, 2, 8000, 16)), chunk("data", []byte{1, 2})), ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// rawChunk writes a chunk header with a declared size that need not match
// the payload.
func rawChunk(id string, declared uint32, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.LittleEndian, declared)
	b.Write(payload)
	return b.Bytes()
}

func TestDecodeOversizedDataChunk(t *testing.T) {
	data := []byte{0x00, 0x40, 0x00, 0xC0} // 0.5, -0.5
	file := buildWAV(
		chunk("fmt ", fmtPayload(formatPCM, 1, 8000, 16)),
		rawChunk("data", 0xFFFFFFF0, data),
	)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	clip, err := Decode(bytes.NewReader(file))
	runtime.ReadMemStats(&after)

	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Frames() != 2 || clip.Samples[0] != 0.5 || clip.Samples[1] != -0.5 {
		t.Errorf("Samples = %v, want [0.5 -0.5]", clip.Samples)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 16<<20 {
		t.Errorf("Decode allocated %d bytes for a %d-byte file", grew, len(file))
	}
}

func TestDecodeOversizedFormatChunk(t *testing.T) {
	tests := []struct {
		name     string
		declared uint32
	}{
		{"huge", 0xFFFFFFF0},
		{"above limit", maxFormatSize + 2},
		{"past end of file", 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := buildWAV(rawChunk("fmt ", tt.declared, fmtPayload(formatPCM, 1, 8000, 16)))

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := Decode(bytes.NewReader(file))
			runtime.ReadMemStats(&after)

			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Decode() error = %v, want ErrInvalid", err)
			}
			if grew := after.TotalAlloc - before.TotalAlloc; grew > 16<<20 {
				t.Errorf("Decode allocated %d bytes for a %d-byte file", grew, len(file))
			}
		})
	}
}

func TestDecodeTruncatedData(t *testing.T) {
	// Declares 8 bytes, carries 5: two complete mono 16-bit frames.
	file := buildWAV(
		chunk("fmt ", fmtPayload(formatPCM, 1, 8000, 16)),
		rawChunk("data", 8, []byte{0x00, 0x40, 0x00, 0xC0, 0x12}),
	)
	clip, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", clip.Frames())
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, &Clip{SampleRate: 8000, Channels: 1, Samples: make([]float32, 80)}, PCM16); err != nil {
		t.Fatal(err)
	}
	f.Close()

	clip, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if clip.Frames() != 80 {
		t.Errorf("Frames() = %d, want 80", clip.Frames())
	}

	if _, err := Open(filepath.Join(dir, "missing.wav")); !errors.Is(err, ErrInvalid) {
		t.Errorf("Open(missing) error = %v, want ErrInvalid", err)
	}

	empty := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(empty); !errors.Is(err, ErrInvalid) {
		t.Errorf("Open(empty) error = %v, want ErrInvalid", err)
	}
}

func TestMono(t *testing.T) {
	stereo := &Clip{SampleRate: 8000, Channels: 2, Samples: []float32{1, 0, 0.5, 0.5, -1, 1}}
	got := stereo.Mono()
	want := []float32{0.5, 0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Mono()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	mono := &Clip{SampleRate: 8000, Channels: 1, Samples: []float32{0.1, 0.2}}
	m := mono.Mono()
	m[0] = 9
	if mono.Samples[0] != 0.1 {
		t.Error("Mono() of a mono clip must not alias Samples")
	}
}
