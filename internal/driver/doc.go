// Package driver implements the load driver: an endless sequence of waves,
// each a bounded burst of concurrent GET requests to one target.
//
// A wave prints "<PoolSize> requests <N>", dispatches PoolSize-1 requests
// through a pool capped at PoolSize, waits for all of them, then sleeps for
// the configured interval. Waves never overlap. Responses are drained and
// discarded; a failed request is indistinguishable from a successful one,
// which is what a load generator wants.
//
// The loop stops when its context is cancelled or after MaxWaves waves.
package driver
