// Package mailer delivers appointment emails. Outcomes cross this boundary
// as a (sent, message) pair; transport failures are reported, never raised.
package mailer

import "time"

type Mailer interface {
	SendConfirmation(recipientEmail, recipientName, doctorName, speciality string, date time.Time, clock string) (bool, string)
	SendReminder(recipientEmail, recipientName, doctorName string, date time.Time, clock string) (bool, string)
}
