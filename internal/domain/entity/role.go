package entity

import "strings"

// Role represents the kind of account logging into the system
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
	RoleUnknown Role = "unknown"
)

// ParseRole maps a stored role string to a Role, returning RoleUnknown for anything unrecognised.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient
	case RoleDoctor:
		return RoleDoctor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Gender of a patient or doctor
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// ParseGender is lenient: unrecognised values become GenderUnknown.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale, true
	case "female", "f":
		return GenderFemale, true
	case "other", "o":
		return GenderOther, true
	case "unknown", "":
		return GenderUnknown, true
	default:
		return GenderUnknown, false
	}
}
