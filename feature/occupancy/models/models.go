package models

import (
	"time"
)

// PatientStatus is the closed set of states the reconciliation engine works with.
type PatientStatus string

const (
	// StatusActive marks a patient currently occupying a bed.
	StatusActive PatientStatus = "active"
	// StatusDischarged marks a patient whose stay has ended.
	StatusDischarged PatientStatus = "discharged"
)

// Valid reports whether s is one of the known statuses.
func (s PatientStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDischarged:
		return true
	default:
		return false
	}
}

// Room represents a hospital ward room. Rooms are created lazily on first
// reference from the feed and never deleted by the sync engine.
// A Room owns its Beds: removing a Room removes the Beds with it.
type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"column:external_id;uniqueIndex;size:64" json:"external_id"`
	Number     string `gorm:"size:32" json:"number"`
	Name       string `gorm:"size:255" json:"name"`

	Beds []Bed `gorm:"constraint:OnDelete:CASCADE" json:"beds,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Bed represents a single bed inside a Room. The RoomID reference is a
// lookup association only; a Bed does not own its Room.
type Bed struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"column:external_id;uniqueIndex;size:64" json:"external_id"`
	Number     string `gorm:"size:32" json:"number"`
	RoomID     uint   `gorm:"index" json:"room_id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Patient represents one hospital stay. ExternalID is deliberately NOT unique:
// a patient who is discharged and later re-admitted gets a brand-new row, so
// several discharged rows may share one external id. The engine guarantees at
// most one active row per external id.
//
// BedID is a weak reference used for lookups only; it never cascades.
type Patient struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ExternalID    string        `gorm:"column:external_id;index;size:64" json:"external_id"`
	FullName      string        `gorm:"size:255" json:"full_name"`
	AdmissionDate time.Time     `json:"admission_date"`
	DischargeDate *time.Time    `json:"discharge_date,omitempty"`
	Status        PatientStatus `gorm:"size:16;index" json:"status"`
	BedID         *uint         `gorm:"index" json:"bed_id,omitempty"`

	DocumentID     string `gorm:"size:64" json:"document_id"`
	BranchID       string `gorm:"size:64" json:"branch_id"`
	DepartmentID   string `gorm:"size:64" json:"department_id"`
	DepartmentName string `gorm:"size:255" json:"department_name"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// IsActive reports whether the stay is still open.
func (p *Patient) IsActive() bool {
	return p.Status == StatusActive
}

// Discharge closes the stay at the given date. The discharge date is kept
// if one was already recorded.
func (p *Patient) Discharge(at time.Time) {
	p.Status = StatusDischarged
	if p.DischargeDate == nil {
		p.DischargeDate = &at
	}
}
