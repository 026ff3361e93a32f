// Package snapshotmaterializer consumes snapshot events and keeps one
// read-optimized record per entity.
//
// The stream is its only input. A delivery is acknowledged only after the
// record write committed, so a crash replays the event instead of losing it.
package snapshotmaterializer
