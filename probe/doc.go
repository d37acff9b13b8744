// Package probe drives the probe cycle.
//
// A Manager walks every configured service and node in order, once per
// interval, and hands each node to a Dispatcher. Poll nodes have each replica
// probed (with retries on dead results) and reported; script nodes have each
// script executed once and reported. Every replica or script is fully probed
// and reported before the next one starts, and a failed report never stops
// its siblings.
//
// Supervise runs the Manager loop on its own goroutine and restarts it after a
// fixed delay if it panics. State of an interrupted cycle is not kept.
package probe
