package natmul

// mulLowLarge writes x·y mod B^n into z[:n] by computing the whole 2n-limb
// product and keeping the low half. Past the large threshold the fast full
// multipliers beat any saving from skipping the high half.
func mulLowLarge[L Limb](z, x, y []L, th *Thresholds) {
	n := len(x)
	p := acquireScratch[L](2 * n)
	defer releaseScratch(p)
	mustNotOverlap("mulLowLarge", "product and output", p, z[:n])

	if fftEnabled && n >= th.FFT {
		mulFFT(p, x, y)
	} else {
		mulFull(p, x, y, th)
	}
	copy(z[:n], p[:n])
}
