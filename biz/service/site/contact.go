package site

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/yi-nology/lab_portal/pkg/locale"
	"github.com/yi-nology/lab_portal/pkg/pagecache"
	"go.uber.org/zap"
)

const maxMessageLength = 5000

// ErrInvalidContact is returned for incomplete contact forms.
var ErrInvalidContact = errors.New("invalid contact form")

// Contact form outcomes shown on the contact page.
const (
	ContactSent    = "sent"
	ContactInvalid = "invalid"
	ContactFailed  = "failed"
)

// ContactForm is a visitor message stored in the CMS.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize trims the fields and checks them.
func (f *ContactForm) Normalize() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Message = strings.TrimSpace(f.Message)
	if f.Name == "" || f.Message == "" {
		return ErrInvalidContact
	}
	if utf8.RuneCountInString(f.Message) > maxMessageLength {
		return fmt.Errorf("%w: message too long", ErrInvalidContact)
	}
	addr, err := mail.ParseAddress(f.Email)
	if err != nil || addr.Address != f.Email {
		return fmt.Errorf("%w: email", ErrInvalidContact)
	}
	return nil
}

// SubmitContact stores a contact form as a CMS record.
func (s *Service) SubmitContact(ctx context.Context, form ContactForm) error {
	if err := form.Normalize(); err != nil {
		return err
	}
	if _, err := s.cms.Create(ctx, collectionContactForms, form); err != nil {
		s.log.Error("submit contact form failed", zap.Error(err))
		return err
	}
	s.log.Info("contact form submitted", zap.String("email", form.Email))
	return nil
}

// ContactResult renders the contact page with the outcome of a submission.
// The result is never cached; invalid submissions keep the visitor's input.
func (s *Service) ContactResult(ctx context.Context, loc, status string, form ContactForm) (*pagecache.Page, error) {
	layout := &Layout{
		Locale:  loc,
		Locales: locale.Supported,
		Path:    "/contact",
		Section: "contact",
		T:       MessagesFor(loc),
	}
	if _, err := s.contact(ctx, layout, ""); err != nil {
		return nil, err
	}
	body := layout.Body.(*contactBody)
	body.Status = status
	if status != ContactSent {
		body.Form = form
	}
	out, err := s.renderer.Render("contact", layout)
	if err != nil {
		return nil, err
	}
	return &pagecache.Page{ContentType: contentType, Body: out}, nil
}
