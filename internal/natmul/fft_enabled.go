//go:build !nofft

package natmul

// fftEnabled selects the FFT full product above Thresholds.FFT. Build with
// -tags nofft to compile it out.
const fftEnabled = true
