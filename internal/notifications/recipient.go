package notifications

import "github.com/google/uuid"

// Recipient addresses a notification: either a single applicant or the shared
// admin inbox. The zero value is invalid; construct one with ForApplicant or
// AdminInbox so the admin case is explicit rather than a nil sentinel.
type Recipient struct {
	applicantID uuid.UUID
	admin       bool
}

// ForApplicant addresses the applicant's personal inbox.
func ForApplicant(id uuid.UUID) Recipient {
	return Recipient{applicantID: id}
}

// AdminInbox addresses the shared inbox read by all reviewers.
func AdminInbox() Recipient {
	return Recipient{admin: true}
}

// IsAdmin reports whether the recipient is the shared admin inbox.
func (r Recipient) IsAdmin() bool {
	return r.admin
}

// ApplicantID returns the addressed applicant and false for the admin inbox.
func (r Recipient) ApplicantID() (uuid.UUID, bool) {
	if r.admin {
		return uuid.Nil, false
	}
	return r.applicantID, true
}

// Valid reports whether the recipient was built through a constructor.
func (r Recipient) Valid() bool {
	return r.admin || r.applicantID != uuid.Nil
}

// storageID maps the recipient onto the nullable applicant_id column.
func (r Recipient) storageID() *uuid.UUID {
	if r.admin {
		return nil
	}
	id := r.applicantID
	return &id
}
