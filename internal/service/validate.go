package service

import (
	"fmt"
	"time"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/repository"
)

// Validation constants shared across services.
const (
	MaxNameLength    = 100    // skill names, problem names, company names, ...
	MaxNotesLength   = 10000  // free-text notes fields
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// dateLayout is the wire and storage format for calendar dates.
const dateLayout = "2006-01-02"

// validateDate checks that value is empty or a real "2006-01-02" date.
// "2026-02-30" fails here — time.Parse rejects impossible dates.
func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return nil
}

// clampList normalizes pagination values into repository.ListOptions.
// Limit defaults to 20 and caps at 100 so a caller can't request the
// whole table in one page.
func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
