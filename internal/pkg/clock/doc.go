// Package clock provides a tiny time abstraction.
//
// Expiry windows and throttles are computed from Clocker.Now instead of
// time.Now so tests can drive time with a Frozen clock.
package clock
