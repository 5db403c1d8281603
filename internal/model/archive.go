package model

import (
	"database/sql"
	"time"
)

// ArchivedBill represents the current state of a bill in the PostgreSQL archive
type ArchivedBill struct {
	BillID         int
	State          string
	BillNumber     string
	Title          string
	URL            string
	LastActionDate sql.NullTime
	LastAction     string
	Status         Status
	StatusDate     sql.NullTime
	Relevance      int
	Checksum       string
	LastQuery      string
	FetchedAt      time.Time
	CreatedAt      time.Time

	// HasDetail is set when Status and StatusDate came from getBill and may overwrite stored values
	HasDetail bool
}

// BillSnapshot represents one observed change of a bill
type BillSnapshot struct {
	ID             int
	BillID         int
	Title          string
	LastActionDate sql.NullTime
	LastAction     string
	Status         Status
	Checksum       string
	SnapshotDate   time.Time
	CreatedAt      time.Time
}

// SearchRun records one archive invocation
type SearchRun struct {
	ID        string
	Query     string
	State     string
	Year      string
	BillCount int
	Changed   int
	StartedAt time.Time
}
