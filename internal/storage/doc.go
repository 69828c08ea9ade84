// Package storage keeps finished runs on disk, one directory per run with
// a metadata.json summary and an energy.csv trace.
package storage
