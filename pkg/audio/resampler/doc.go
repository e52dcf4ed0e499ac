// Package resampler converts mono float audio between sample rates using a
// pure Go polyphase resampler (no CGO/FFI dependencies).
//
// Feature extraction runs at the clip's native rate by default. Resampling
// is only applied when a target rate is configured, e.g. to feed 48 kHz
// recordings to a classifier trained on 22.05 kHz audio.
//
// Example usage:
//
//	out, err := resampler.Resample(samples, 48000, 22050)
//	if err != nil {
//	    return err
//	}
package resampler
