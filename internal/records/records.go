// Package records defines the per-sector data record types ingested by the
// write pipeline. Each type carries a natural key (the business-meaningful
// field tuple that must be unique per table) and a set of non-negative
// numeric metrics.
package records

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "pulseboard/pkg/domain-errors"
)

// Sector identifiers. Sector comparison is case-insensitive everywhere; these
// lowercase forms are canonical.
const (
	SectorMarketing = "marketing"
	SectorSales     = "sales"
	SectorEvents    = "events"
	SectorHR        = "hr"
	SectorAcademic  = "academic"
	SectorFinance   = "finance"
)

var sectors = []string{
	SectorMarketing,
	SectorSales,
	SectorEvents,
	SectorHR,
	SectorAcademic,
	SectorFinance,
}

// Sectors lists the canonical sector identifiers.
func Sectors() []string {
	out := make([]string, len(sectors))
	copy(out, sectors)
	return out
}

// NormalizeSector maps a sector string to its canonical form, ignoring case
// and surrounding whitespace. Unknown sectors return a NotFound coded error.
func NormalizeSector(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range sectors {
		if strings.EqualFold(s, trimmed) {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeNotFound, "unknown sector "+trimmed)
}

// Date is a calendar date (no time component). It round-trips as YYYY-MM-DD
// in JSON and maps to a SQL DATE column.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for DATE columns.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Meta is the storage-assigned metadata every record carries. Record types
// embed it; the pipeline stamps it on create and update.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordMeta exposes the embedded metadata for stamping. Promoted to every
// record type via embedding.
func (m *Meta) RecordMeta() *Meta { return m }

// KeyField is one column of a natural key.
type KeyField struct {
	Column string
	Value  any
}

// Key is the natural-key tuple of a record. The storage layer's unique
// composite index on these columns is the authoritative duplicate guard; the
// application-level pre-check only yields a clearer error message.
type Key []KeyField

func (k Key) String() string {
	parts := make([]string, 0, len(k))
	for _, f := range k {
		parts = append(parts, fmt.Sprint(f.Value))
	}
	return strings.Join(parts, " / ")
}

// Record is implemented by every sector's data type. Pointer receivers: the
// pipeline works with *MarketingRecord etc.
type Record interface {
	// Table is the storage table name.
	Table() string
	// Sector is the canonical sector identifier scoping access.
	Sector() string
	// NaturalKey derives the unique field tuple.
	NaturalKey() Key
	// Date is the reference date the record reports on.
	Date() Date
	// Validate rejects malformed drafts before any persistence attempt.
	Validate() error
	// Metrics returns the numeric fields summed by aggregate statistics.
	Metrics() map[string]float64
	// Ratios derives sector-specific ratios from summed metrics. Any ratio
	// with a zero denominator evaluates to zero, never a division fault.
	Ratios(totals map[string]float64) map[string]float64
	// RecordMeta exposes the embedded Meta.
	RecordMeta() *Meta
}

// Grouper is optionally implemented by record types whose statistics include
// a per-group breakdown (e.g. marketing by channel).
type Grouper interface {
	GroupLabel() string
	GroupValue() string
}

// Ratio divides num by den, evaluating to 0 when the denominator is 0.
// Required guard for aggregate statistics, not an omission.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// --- shared validation helpers ---

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeBadRequest, name+" is required")
	}
	return nil
}

func requireDate(name string, d Date) error {
	if d.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, name+" is required")
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if v < 0 {
		return dErrors.New(dErrors.CodeBadRequest, name+" must not be negative")
	}
	return nil
}

func nonNegativeInt(name string, v int64) error {
	if v < 0 {
		return dErrors.New(dErrors.CodeBadRequest, name+" must not be negative")
	}
	return nil
}

func optNonNegative(name string, v *float64) error {
	if v == nil {
		return nil
	}
	return nonNegative(name, *v)
}

func optNonNegativeInt(name string, v *int64) error {
	if v == nil {
		return nil
	}
	return nonNegativeInt(name, *v)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
