// Package model defines the value types shared by the load driver, the
// history store, and the report writers.
//
//   - Run: one invocation of the driver
//   - Wave: one burst of concurrent requests within a Run
//
// The types carry timing and counts only. Responses are never recorded.
package model
