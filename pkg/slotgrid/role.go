package slotgrid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRole = errors.New("unknown viewer role")

// Role is the kind of user looking at the grid.
type Role int

const (
	RoleUnknown Role = iota
	RoleDoctor
	RolePatient
	RoleAdmin
)

// ParseRole maps a session role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doctor", "medico":
		return RoleDoctor, nil
	case "patient", "paciente":
		return RolePatient, nil
	case "admin", "secretario":
		return RoleAdmin, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string {
	switch r {
	case RoleDoctor:
		return "doctor"
	case RolePatient:
		return "patient"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// seesBookings reports whether the role is shown real appointment states.
func (r Role) seesBookings() (bool, error) {
	switch r {
	case RoleDoctor, RoleAdmin:
		return true, nil
	case RolePatient:
		return false, nil
	}
	return false, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
}
