package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/optic/loan-origination/internal/domain/event"
)

const (
	maxNameLength     = 255
	maxDocumentLength = 20
	maxEmailLength    = 255
	minPhoneLength    = 9
	maxPhoneLength    = 15
)

// maxMonthlyIncome bounds the NUMERIC(10,2) column.
var maxMonthlyIncome = decimal.New(1, 8)

// ClientProfile holds the editable attributes of a client.
type ClientProfile struct {
	FullName      string
	Document      string
	Email         string
	Phone         string
	MonthlyIncome decimal.NullDecimal
}

// Normalize trims surrounding whitespace from every text field.
func (p ClientProfile) Normalize() ClientProfile {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Document = strings.TrimSpace(p.Document)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	return p
}

// Validate checks field presence and length limits.
func (p ClientProfile) Validate() error {
	switch {
	case p.FullName == "":
		return invalid("full_name", "is required")
	case utf8.RuneCountInString(p.FullName) > maxNameLength:
		return invalid("full_name", "must not exceed 255 characters")
	case p.Document == "":
		return invalid("document", "is required")
	case utf8.RuneCountInString(p.Document) > maxDocumentLength:
		return invalid("document", "must not exceed 20 characters")
	case utf8.RuneCountInString(p.Email) > maxEmailLength:
		return invalid("email", "must not exceed 255 characters")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return invalid("email", "is not a valid address")
		}
	}
	if n := utf8.RuneCountInString(p.Phone); n < minPhoneLength || n > maxPhoneLength {
		return invalid("phone", "must be between 9 and 15 characters")
	}
	if p.MonthlyIncome.Valid {
		if p.MonthlyIncome.Decimal.IsNegative() {
			return invalid("monthly_income", "must not be negative")
		}
		if p.MonthlyIncome.Decimal.GreaterThanOrEqual(maxMonthlyIncome) {
			return invalid("monthly_income", "must not exceed 10 digits")
		}
	}
	return nil
}

// Client is a registered loan applicant. Applications reference clients by
// ID; removing a client removes its applications.
type Client struct {
	id           string
	profile      ClientProfile
	active       bool
	createdAt    time.Time
	updatedAt    *time.Time
	domainEvents []event.DomainEvent
}

// NewClient validates the profile and creates an active client.
func NewClient(p ClientProfile, now time.Time) (Client, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return Client{}, err
	}
	c := Client{
		id:        uuid.New().String(),
		profile:   p,
		active:    true,
		createdAt: now,
	}
	c.domainEvents = append(c.domainEvents, event.NewClientRegistered(c.id, p.Document, p.FullName, now))
	return c, nil
}

// ReconstructClient rebuilds a client from persistence.
func ReconstructClient(id string, p ClientProfile, active bool, createdAt time.Time, updatedAt *time.Time) Client {
	return Client{
		id:        id,
		profile:   p,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Update replaces the profile. updatedAt is only ever set here.
func (c Client) Update(p ClientProfile, now time.Time) (Client, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return c, err
	}
	next := c
	next.profile = p
	next.updatedAt = &now
	next.domainEvents = nil
	return next, nil
}

func (c Client) ID() string                        { return c.id }
func (c Client) Profile() ClientProfile            { return c.profile }
func (c Client) FullName() string                  { return c.profile.FullName }
func (c Client) Document() string                  { return c.profile.Document }
func (c Client) Active() bool                      { return c.active }
func (c Client) CreatedAt() time.Time              { return c.createdAt }
func (c Client) UpdatedAt() *time.Time             { return c.updatedAt }
func (c Client) DomainEvents() []event.DomainEvent { return c.domainEvents }
