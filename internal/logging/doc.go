// Package logging provides the logging interface used by the configuration
// and calibration layers. It hides the backend (zerolog or the standard
// library logger) behind a small field-based API. The limb kernels never log.
package logging
