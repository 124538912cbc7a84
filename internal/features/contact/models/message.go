package models

import (
	"slices"
	"strings"
	"time"

	"clr-site/internal/core"
)

const (
	StatusNew = "new"

	ContactByEmail = "email"
	ContactByPhone = "phone"

	maxMessageLength = 5000
)

// Purposes are the reasons a visitor can pick on the contact form
var Purposes = []string{
	"Podcast Guest Appearance",
	"Collaboration Opportunity",
	"Media Interview",
	"Event Booking",
	"Sponsorship Inquiry",
	"General Question",
	"Other",
}

// Message is a contact form submission
type Message struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Purpose          string    `json:"purpose"`
	Subject          string    `json:"subject"`
	Message          string    `json:"message"`
	PreferredContact string    `json:"preferred_contact"`
	Company          string    `json:"company"`
	Website          string    `json:"website"`
	Budget           string    `json:"budget"`
	Timeline         string    `json:"timeline"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Normalize trims every field and lowercases the email
func (m *Message) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = core.NormalizeEmail(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Purpose = strings.TrimSpace(m.Purpose)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	m.PreferredContact = strings.TrimSpace(m.PreferredContact)
	if m.PreferredContact == "" {
		m.PreferredContact = ContactByEmail
	}
	m.Company = strings.TrimSpace(m.Company)
	m.Website = strings.TrimSpace(m.Website)
	m.Budget = strings.TrimSpace(m.Budget)
	m.Timeline = strings.TrimSpace(m.Timeline)
}

// Validate reports the first problem with a normalized message
func (m Message) Validate() error {
	switch {
	case m.Name == "":
		return core.NewValidationError("Name is required", nil)
	case !core.ValidEmail(m.Email):
		return core.NewValidationError("Please enter a valid email address.", nil)
	case !slices.Contains(Purposes, m.Purpose):
		return core.NewValidationError("Please choose what you'd like to talk about", nil)
	case m.Subject == "":
		return core.NewValidationError("Subject is required", nil)
	case m.Message == "":
		return core.NewValidationError("Message is required", nil)
	case len(m.Message) > maxMessageLength:
		return core.NewValidationError("Message is too long", nil)
	case m.PreferredContact != ContactByEmail && m.PreferredContact != ContactByPhone:
		return core.NewValidationError("Preferred contact must be email or phone", nil)
	case m.PreferredContact == ContactByPhone && m.Phone == "":
		return core.NewValidationError("A phone number is required to be contacted by phone", nil)
	}
	return nil
}
