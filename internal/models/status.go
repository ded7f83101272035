package models

import "time"

// SyncStatus is the singleton bookkeeping row describing the last sync
// attempt. It is created when the store is initialized, overwritten on every
// completed or degraded pass, and never deleted.
type SyncStatus struct {
	LastSync     time.Time
	TotalRecords int
	IsOnline     bool
}
