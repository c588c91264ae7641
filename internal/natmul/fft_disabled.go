//go:build nofft

package natmul

const fftEnabled = false
