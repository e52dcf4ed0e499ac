package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Defaults for [PowerToDB].
const (
	DefaultAmin  = 1e-10
	DefaultTopDB = 80.0
)

// PowerToDB converts a power spectrogram to decibels relative to ref:
// 10*log10(max(amin, S)) - 10*log10(max(amin, ref)). When topDB >= 0 the
// result is floored at max(result) - topDB.
func PowerToDB(s *mat.Dense, ref, amin, topDB float64) *mat.Dense {
	refDB := 10.0 * math.Log10(math.Max(amin, ref))

	var db mat.Dense
	db.Apply(func(_, _ int, v float64) float64 {
		return 10.0*math.Log10(math.Max(amin, v)) - refDB
	}, s)

	if topDB >= 0 {
		floor := mat.Max(&db) - topDB
		db.Apply(func(_, _ int, v float64) float64 {
			return math.Max(v, floor)
		}, &db)
	}
	return &db
}

// DCTBasis returns the [nOut, nIn] orthonormal DCT-II matrix. Multiplying
// it with a column vector of length nIn yields the first nOut coefficients.
func DCTBasis(nOut, nIn int) *mat.Dense {
	basis := mat.NewDense(nOut, nIn, nil)
	n := float64(nIn)
	for k := range nOut {
		scale := math.Sqrt(2.0 / n)
		if k == 0 {
			scale = math.Sqrt(1.0 / n)
		}
		for i := range nIn {
			basis.Set(k, i, scale*math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*n)))
		}
	}
	return basis
}

// MFCC returns nMFCC cepstral coefficients per frame from a mel power
// spectrogram: the orthonormal DCT-II of its dB representation.
func MFCC(melPower *mat.Dense, nMFCC int, topDB float64) *mat.Dense {
	db := PowerToDB(melPower, 1.0, DefaultAmin, topDB)
	nMels, _ := db.Dims()

	var out mat.Dense
	out.Mul(DCTBasis(nMFCC, nMels), db)
	return &out
}
