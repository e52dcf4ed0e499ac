package spectral

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func sine(freq float64, sr, n int) []float32 {
	y := make([]float32, n)
	for i := range y {
		y[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr)))
	}
	return y
}

func TestHannWindow(t *testing.T) {
	w := HannWindow(8)
	if w[0] != 0 {
		t.Errorf("w[0] = %f, want 0", w[0])
	}
	// Periodic window peaks at n/2.
	if math.Abs(w[4]-1) > 1e-12 {
		t.Errorf("w[4] = %f, want 1", w[4])
	}
	if math.Abs(w[1]-w[7]) > 1e-12 {
		t.Errorf("window not symmetric: w[1]=%f w[7]=%f", w[1], w[7])
	}
}

func TestReflect(t *testing.T) {
	// numpy reflect of [0 1 2 3] padded by 3: 3 2 1 | 0 1 2 3 | 2 1 0
	n := 4
	want := map[int]int{-3: 3, -2: 2, -1: 1, 0: 0, 3: 3, 4: 2, 5: 1, 6: 0, 7: 1}
	for i, w := range want {
		if got := reflect(i, n); got != w {
			t.Errorf("reflect(%d, %d) = %d, want %d", i, n, got, w)
		}
	}
	if got := reflect(-5, 1); got != 0 {
		t.Errorf("reflect(-5, 1) = %d, want 0", got)
	}
}

func TestSTFTShape(t *testing.T) {
	y := sine(440, 22050, 22050)
	s, err := STFT(y, 2048, 512)
	if err != nil {
		t.Fatalf("STFT: %v", err)
	}
	r, c := s.Dims()
	if r != 1025 {
		t.Errorf("bins = %d, want 1025", r)
	}
	if want := 1 + 22050/512; c != want {
		t.Errorf("frames = %d, want %d", c, want)
	}
}

func TestSTFTPeak(t *testing.T) {
	// 1 kHz at 16 kHz with nfft 512 lands exactly on bin 32.
	y := sine(1000, 16000, 4096)
	s, err := STFT(y, 512, 128)
	if err != nil {
		t.Fatalf("STFT: %v", err)
	}
	_, c := s.Dims()
	col := mat.Col(nil, c/2, s)
	best := 0
	for i, v := range col {
		if v > col[best] {
			best = i
		}
	}
	if best != 32 {
		t.Errorf("peak bin = %d, want 32", best)
	}
}

func TestSTFTErrors(t *testing.T) {
	if _, err := STFT(nil, 2048, 512); !errors.Is(err, ErrEmpty) {
		t.Errorf("STFT(nil) error = %v, want ErrEmpty", err)
	}
	if _, err := STFT([]float32{1}, 0, 512); err == nil {
		t.Error("STFT with nfft=0 expected error")
	}
}

func TestSTFTShortSignal(t *testing.T) {
	// Shorter than the window: still one centered frame, all finite.
	s, err := STFT([]float32{0.1, 0.2, 0.3}, 2048, 512)
	if err != nil {
		t.Fatalf("STFT: %v", err)
	}
	_, c := s.Dims()
	if c != 1 {
		t.Fatalf("frames = %d, want 1", c)
	}
	for _, v := range s.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatal("non-finite magnitude")
		}
	}
}

func TestMelScale(t *testing.T) {
	// Slaney scale is linear below 1 kHz: 1000 Hz = 15 mels.
	if got := HzToMel(1000, false); math.Abs(got-15) > 1e-9 {
		t.Errorf("HzToMel(1000) = %f, want 15", got)
	}
	if got := HzToMel(200, false); math.Abs(got-3) > 1e-9 {
		t.Errorf("HzToMel(200) = %f, want 3", got)
	}
	// HTK scale: 2595 * log10(1 + f/700)
	if got := HzToMel(1000, true); math.Abs(got-1000.45) > 1.0 {
		t.Errorf("HzToMel(1000, htk) = %f, want ~1000.45", got)
	}
	for _, htk := range []bool{false, true} {
		for _, hz := range []float64{0, 440, 1000, 4000, 11025} {
			if got := MelToHz(HzToMel(hz, htk), htk); math.Abs(got-hz) > 1e-6 {
				t.Errorf("round trip %f (htk=%v) = %f", hz, htk, got)
			}
		}
	}
}

func TestMelFilterBank(t *testing.T) {
	bank := MelFilterBank(22050, 2048, 128, 0, 0, false)
	r, c := bank.Dims()
	if r != 128 || c != 1025 {
		t.Fatalf("dims = %dx%d, want 128x1025", r, c)
	}
	for i := range r {
		nonZero := false
		for k := range c {
			v := bank.At(i, k)
			if v < 0 {
				t.Fatalf("filter %d bin %d negative: %f", i, k, v)
			}
			if v > 0 {
				nonZero = true
			}
		}
		if !nonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func TestPowerToDB(t *testing.T) {
	s := mat.NewDense(1, 4, []float64{1, 0.1, 1e-12, 100})
	db := PowerToDB(s, 1, DefaultAmin, 80)
	want := []float64{0, -10, -60, 20}
	for j, w := range want {
		if got := db.At(0, j); math.Abs(got-w) > 1e-9 {
			t.Errorf("db[%d] = %f, want %f", j, got, w)
		}
	}

	// topDB clamps to max - topDB.
	db = PowerToDB(s, 1, DefaultAmin, 30)
	if got := db.At(0, 2); math.Abs(got-(-10)) > 1e-9 {
		t.Errorf("clamped db = %f, want -10", got)
	}
}

func TestDCTBasisOrthonormal(t *testing.T) {
	b := DCTBasis(16, 16)
	var p mat.Dense
	p.Mul(b, b.T())
	for i := range 16 {
		for j := range 16 {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(p.At(i, j)-want) > 1e-9 {
				t.Fatalf("B*B^T[%d][%d] = %f, want %f", i, j, p.At(i, j), want)
			}
		}
	}
}

func TestMFCCConstant(t *testing.T) {
	// A flat spectrum only excites the 0th coefficient.
	mel := mat.NewDense(8, 2, nil)
	for i := range 8 {
		mel.Set(i, 0, 1)
		mel.Set(i, 1, 1)
	}
	m := MFCC(mel, 4, 80)
	if r, _ := m.Dims(); r != 4 {
		t.Fatalf("rows = %d, want 4", r)
	}
	for k := 1; k < 4; k++ {
		if math.Abs(m.At(k, 0)) > 1e-9 {
			t.Errorf("mfcc[%d] = %f, want 0", k, m.At(k, 0))
		}
	}
}

func TestPitchTuning(t *testing.T) {
	if got := PitchTuning([]float64{440, 880, 220}, 0.01, 12); math.Abs(got) > 0.011 {
		t.Errorf("tuning of A = %f, want ~0", got)
	}
	// A quarter semitone sharp.
	sharp := 440 * math.Pow(2, 0.25/12)
	if got := PitchTuning([]float64{sharp}, 0.01, 12); math.Abs(got-0.25) > 0.011 {
		t.Errorf("tuning = %f, want ~0.25", got)
	}
	if got := PitchTuning(nil, 0.01, 12); got != 0 {
		t.Errorf("tuning of empty set = %f, want 0", got)
	}
}

func TestChromaFilterBank(t *testing.T) {
	bank := ChromaFilterBank(22050, 2048, 12, 0)
	r, c := bank.Dims()
	if r != 12 || c != 1025 {
		t.Fatalf("dims = %dx%d, want 12x1025", r, c)
	}
	// The bin closest to 261.6 Hz (middle C) should favor row 0.
	k := int(math.Round(261.63 * 2048 / 22050))
	col := mat.Col(nil, k, bank)
	best := 0
	for i, v := range col {
		if v > col[best] {
			best = i
		}
	}
	if best != 0 {
		t.Errorf("middle C maps to chroma %d, want 0", best)
	}
}

func TestChromaNormalized(t *testing.T) {
	y := sine(440, 22050, 22050)
	mag, err := STFT(y, 2048, 512)
	if err != nil {
		t.Fatal(err)
	}
	ch := Chroma(mag, 22050, 12)
	r, c := ch.Dims()
	if r != 12 {
		t.Fatalf("rows = %d, want 12", r)
	}
	for j := range c {
		col := mat.Col(nil, j, ch)
		best := 0
		for i, v := range col {
			if v > col[best] {
				best = i
			}
		}
		if math.Abs(col[best]-1) > 1e-9 {
			t.Fatalf("frame %d max = %f, want 1", j, col[best])
		}
		// A is pitch class 9 counting from C.
		if best != 9 {
			t.Errorf("frame %d peak at chroma %d, want 9", j, best)
		}
	}
}

func TestTimeMean(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, -1, 0, 4})
	got := TimeMean(m)
	want := []float64{2, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("TimeMean[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

// Reference values follow librosa 0.8 (slaney mel, periodic hann, reflect
// padding, ortho DCT-II, piptrack tuning at 0.01 resolution) evaluated in
// float64. librosa keeps its filterbanks in float32, hence the relative
// tolerance.
func closeTo(got, want float64) bool {
	return math.Abs(got-want) <= 1e-4*math.Max(1, math.Abs(want))
}

func TestMelFilterBankReference(t *testing.T) {
	bank := MelFilterBank(22050, 2048, 128, 0, 0, false)
	for _, tc := range []struct {
		mel, bin int
		want     float64
	}{
		{0, 1, 0.016182853208219942},
		{0, 2, 0.032365706416439884},
		{10, 25, 0.01687809189529959},
		{40, 97, 0.014093741843680074},
		{40, 98, 0.02778608168560391},
		{40, 120, 0},
		{100, 475, 0.0008677448300391312},
		{127, 1020, 0.0005210411868444714},
	} {
		if got := bank.At(tc.mel, tc.bin); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("bank[%d][%d] = %.12g, want %.12g", tc.mel, tc.bin, got, tc.want)
		}
	}
}

func TestSineFeatureMeans(t *testing.T) {
	const sr = 22050
	y := sine(440, sr, 4096)
	mag, err := STFT(y, 2048, 512)
	if err != nil {
		t.Fatal(err)
	}
	if _, c := mag.Dims(); c != 9 {
		t.Fatalf("frames = %d, want 9", c)
	}

	if got := EstimateTuning(mag, sr, 12); math.Abs(got-0.01) > 1e-9 {
		t.Errorf("tuning = %g, want 0.01", got)
	}

	mel := MelSpectrogram(Power(mag), MelFilterBank(sr, 2048, 128, 0, 0, false))
	melMean := TimeMean(mel)
	for _, tc := range []struct {
		i    int
		want float64
	}{
		{0, 0.8428634118772114},
		{10, 2.5103534407687533},
		{20, 3.362573864266664},
		{30, 0.16332035114946156},
		{60, 0.003582872701784107},
	} {
		if !closeTo(melMean[tc.i], tc.want) {
			t.Errorf("mel mean[%d] = %.10g, want %.10g", tc.i, melMean[tc.i], tc.want)
		}
	}

	mfcc := TimeMean(MFCC(mel, 40, 80))
	for i, want := range []float64{
		-385.150332635355,
		107.3098560394474,
		32.868116134320594,
		13.111708587434302,
		-1.8817405160094198,
		-15.681089852720314,
	} {
		if !closeTo(mfcc[i], want) {
			t.Errorf("mfcc mean[%d] = %.10g, want %.10g", i, mfcc[i], want)
		}
	}

	chroma := TimeMean(Chroma(mag, sr, 12))
	for i, want := range []float64{
		0.06024596725982293,
		0.05115995889694237,
		0.04710311012878954,
		0.04546752492151906,
		0.04632002467295402,
		0.049554256813828405,
		0.05769947981320215,
		0.08272878099258524,
		0.34835171182609437,
		1.0,
		0.3609911085584216,
		0.08508150082327984,
	} {
		if !closeTo(chroma[i], want) {
			t.Errorf("chroma mean[%d] = %.10g, want %.10g", i, chroma[i], want)
		}
	}
}

func BenchmarkSTFT(b *testing.B) {
	y := sine(440, 22050, 3*22050)
	b.ReportAllocs()
	for range b.N {
		_, _ = STFT(y, 2048, 512)
	}
}
