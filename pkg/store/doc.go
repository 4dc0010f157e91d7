// Package store provides the reactive value containers mirrored to the
// browser. A Store holds exactly one value; Set replaces it wholesale
// and notifies subscribers. There is no merge, no eviction, no
// sequencing: when two refreshes race, the last write wins.
package store
