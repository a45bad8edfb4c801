package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// ID prefixes per entity kind.
const (
	PatientPrefix      = "P"
	DoctorPrefix       = "D"
	AppointmentPrefix  = "APT"
	MedicinePrefix     = "MED"
	PrescriptionPrefix = "PRE"
	DepartmentPrefix   = "DEP"
)

// NextID returns prefix followed by one more than the highest numeric suffix among ids
// carrying that prefix, zero-padded to at least three digits. IDs with another prefix
// or a non-numeric suffix are ignored, so gaps are never refilled.
func NextID(prefix string, ids []string) string {
	max := 0
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		suffix := id[len(prefix):]
		if suffix == "" || strings.TrimLeft(suffix, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}
