package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatientStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status PatientStatus
		want   bool
	}{
		{"Active", StatusActive, true},
		{"Discharged", StatusDischarged, true},
		{"Unknown", PatientStatus("transferred"), false},
		{"Empty", PatientStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestPatient_Discharge(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Sets date when unset", func(t *testing.T) {
		p := Patient{Status: StatusActive}
		p.Discharge(now)
		assert.Equal(t, StatusDischarged, p.Status)
		assert.NotNil(t, p.DischargeDate)
		assert.Equal(t, now, *p.DischargeDate)
	})

	t.Run("Keeps already recorded date", func(t *testing.T) {
		recorded := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		p := Patient{Status: StatusActive, DischargeDate: &recorded}
		p.Discharge(now)
		assert.Equal(t, StatusDischarged, p.Status)
		assert.Equal(t, recorded, *p.DischargeDate)
	})
}
