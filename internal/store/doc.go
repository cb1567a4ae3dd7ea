// Package store defines the persistence interfaces the application depends
// on, along with shared database plumbing (DBTX, transactions) and the
// sentinel errors store implementations translate into.
package store
