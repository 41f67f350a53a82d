package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"formatrack_backend/apperr"
	"formatrack_backend/models"
)

// Arrivals strictly after 09:00 are late. The cutoff is the same for every course.
const (
	cutoffHour   = 9
	cutoffMinute = 0
)

// ParseClock parses "HH:MM" or "HH:MM:SS" into hours and minutes.
func ParseClock(s string) (hours, minutes int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	hours, err = strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minutes, err = strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return hours, minutes, nil
}

// IsLate reports whether an arrival time is after the cutoff. 09:00 itself is on time.
func IsLate(heure string) (bool, error) {
	h, m, err := ParseClock(heure)
	if err != nil {
		return false, err
	}
	return h > cutoffHour || (h == cutoffHour && m > cutoffMinute), nil
}

// NormalizeClock returns heure as "HH:MM".
func NormalizeClock(heure string) (string, error) {
	h, m, err := ParseClock(heure)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// NewAttendance builds the attendance record for a check submitted on the given day.
// A present check must carry a valid time; an absent one keeps its time only if it parses.
func NewAttendance(req models.CreateAttendanceRequest, now time.Time) (models.Attendance, error) {
	a := models.Attendance{
		ClientID:     req.ClientID,
		CoursID:      req.CoursID,
		DatePresence: now.Format(DateLayout),
		Etat:         req.Etat,
	}
	switch req.Etat {
	case models.EtatPresent:
		heure, err := NormalizeClock(req.HeurePresence)
		if err != nil {
			return a, apperr.Validation("Heure de présence invalide (format HH:MM attendu)")
		}
		a.HeurePresence = &heure
	case models.EtatAbsent:
		if heure, err := NormalizeClock(req.HeurePresence); err == nil {
			a.HeurePresence = &heure
		}
	default:
		return a, apperr.Validation("État de présence invalide")
	}
	return a, nil
}
