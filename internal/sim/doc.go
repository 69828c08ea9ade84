// Package sim runs an engine over many steps headlessly and records what
// happened.
package sim
