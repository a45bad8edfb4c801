package entity

// Department groups doctors under a head doctor.
type Department struct {
	DepartmentID string   `json:"department_id" validate:"required,linesafe"`
	Name         string   `json:"name" validate:"required,linesafe"`
	Description  string   `json:"description" validate:"linesafe"`
	HeadDoctorID string   `json:"head_doctor_id" validate:"linesafe"`
	DoctorIDs    []string `json:"doctor_ids" validate:"dive,required,listsafe"`
}

// Clone returns a copy that shares no member storage with d.
func (d Department) Clone() Department {
	if d.DoctorIDs != nil {
		ids := make([]string, len(d.DoctorIDs))
		copy(ids, d.DoctorIDs)
		d.DoctorIDs = ids
	}
	return d
}

// HasDoctor reports membership.
func (d *Department) HasDoctor(doctorID string) bool {
	for _, id := range d.DoctorIDs {
		if id == doctorID {
			return true
		}
	}
	return false
}

// AddDoctor adds doctorID unless already a member.
func (d *Department) AddDoctor(doctorID string) bool {
	if doctorID == "" || d.HasDoctor(doctorID) {
		return false
	}
	d.DoctorIDs = append(d.DoctorIDs, doctorID)
	return true
}

// RemoveDoctor removes doctorID, clearing the head position if it held it.
func (d *Department) RemoveDoctor(doctorID string) bool {
	for i, id := range d.DoctorIDs {
		if id == doctorID {
			d.DoctorIDs = append(d.DoctorIDs[:i], d.DoctorIDs[i+1:]...)
			if d.HeadDoctorID == doctorID {
				d.HeadDoctorID = ""
			}
			return true
		}
	}
	return false
}
