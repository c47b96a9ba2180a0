//go:build !race

package version

// RaceEnabled is true if the binary has been built with the race detector.
const RaceEnabled = false
