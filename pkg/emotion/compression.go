package emotion

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Compression folds the eight RAVDESS emotion codes into the two training
// classes. It is kept exactly as the classifier was trained with.
var Compression = map[string]int{
	"01": 0,
	"02": 0,
	"03": 0,
	"04": 1,
	"05": 1,
	"06": 1,
	"07": 1,
	"08": 0,
}

// ObservedClasses lists the compressed classes used for training.
var ObservedClasses = []int{0, 1}

// Names gives the RAVDESS name of each emotion code.
var Names = map[string]string{
	"01": "neutral",
	"02": "calm",
	"03": "happy",
	"04": "sad",
	"05": "angry",
	"06": "fearful",
	"07": "disgust",
	"08": "surprised",
}

// Compress maps a two-digit emotion code to its training class.
func Compress(code string) (int, error) {
	c, ok := Compression[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEmotion, code)
	}
	return c, nil
}

// ParseClipName extracts the emotion code from a RAVDESS file name of the
// form MM-VC-EE-II-SS-RR-AA.wav, where EE is the emotion.
func ParseClipName(name string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	fields := strings.Split(base, "-")
	if len(fields) != 7 {
		return "", fmt.Errorf("emotion: %q is not a RAVDESS clip name", filepath.Base(name))
	}
	code := fields[2]
	if _, ok := Compression[code]; !ok {
		return "", fmt.Errorf("%w: %q in %q", ErrUnknownEmotion, code, filepath.Base(name))
	}
	return code, nil
}
