package model

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// Session is the authenticated viewer. It is built once per request from the
// bearer token and passed explicitly to the services.
type Session struct {
	Subject  string        `json:"subject"`
	UserID   int64         `json:"user_id"`
	Role     slotgrid.Role `json:"role"`
	DoctorID int64         `json:"doctor_id,omitempty"`
}

// IsDoctor reports whether the session belongs to doctorID itself.
func (s Session) IsDoctor(doctorID int64) bool {
	return s.Role == slotgrid.RoleDoctor && s.DoctorID == doctorID
}

// CanManageAvailability reports whether the session may replace weekly rules.
func (s Session) CanManageAvailability() bool {
	return s.Role == slotgrid.RoleAdmin
}

// CanViewAgenda reports whether the session may see the bookings of doctorID.
func (s Session) CanViewAgenda(doctorID int64) bool {
	return s.Role == slotgrid.RoleAdmin || s.IsDoctor(doctorID)
}

// SessionClaims is the payload of a session token issued by the auth backend.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	DoctorID int64  `json:"doctor_id,omitempty"`
}

// Session validates the claims and converts them.
func (c *SessionClaims) Session() (Session, error) {
	role, err := slotgrid.ParseRole(c.Role)
	if err != nil {
		return Session{}, err
	}
	if role == slotgrid.RoleDoctor && c.DoctorID <= 0 {
		return Session{}, fmt.Errorf("doctor session without doctor_id")
	}

	subject := c.Subject
	if subject == "" {
		subject = fmt.Sprintf("user:%d", c.UserID)
	}
	return Session{
		Subject:  subject,
		UserID:   c.UserID,
		Role:     role,
		DoctorID: c.DoctorID,
	}, nil
}
