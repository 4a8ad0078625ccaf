package complaint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/civicdex/internal/domain"
	"github.com/kailas-cloud/civicdex/internal/textnorm"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Limits on stored complaint fields.
const (
	MaxIDLength          = 256
	MaxLocationLength    = 256
	MaxDescriptionLength = 16384
	MaxPayloadFields     = 32
)

// Reserved hash fields used by the store for the core columns.
const (
	FieldLocation    = "__location"
	FieldDescription = "__description"
)

// Complaint is a historical civic complaint (immutable value object).
// Payload carries extra columns (issue_type, urgency, ...) without interpretation.
type Complaint struct {
	id          string
	location    string
	description string
	normalized  string
	payload     map[string]string
}

// New validates and creates a Complaint.
func New(id, location, description string, payload map[string]string) (Complaint, error) {
	if id == "" {
		return Complaint{}, fmt.Errorf("%w: id is required", domain.ErrInvalidComplaint)
	}
	if len(id) > MaxIDLength {
		return Complaint{}, fmt.Errorf("%w: id too long (max %d)", domain.ErrInvalidComplaint, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Complaint{}, fmt.Errorf(
			"%w: id must be alphanumeric with underscores and hyphens", domain.ErrInvalidComplaint)
	}
	if strings.TrimSpace(location) == "" {
		return Complaint{}, fmt.Errorf("%w: location is required", domain.ErrInvalidComplaint)
	}
	if len(location) > MaxLocationLength {
		return Complaint{}, fmt.Errorf(
			"%w: location too long (max %d)", domain.ErrInvalidComplaint, MaxLocationLength)
	}
	if len(description) > MaxDescriptionLength {
		return Complaint{}, fmt.Errorf(
			"%w: description too long (max %d bytes)", domain.ErrInvalidComplaint, MaxDescriptionLength)
	}
	if len(payload) > MaxPayloadFields {
		return Complaint{}, fmt.Errorf(
			"%w: too many payload fields (max %d)", domain.ErrInvalidComplaint, MaxPayloadFields)
	}
	for k := range payload {
		if k == FieldLocation || k == FieldDescription || k == "" {
			return Complaint{}, fmt.Errorf("%w: payload field %q is reserved", domain.ErrInvalidComplaint, k)
		}
	}

	return Reconstruct(id, location, description, clonePayload(payload)), nil
}

// FromRecord creates a corpus complaint from an imported row. Only a non-blank
// location is required; id format and field sizes are not restricted.
func FromRecord(id, location, description string, payload map[string]string) (Complaint, error) {
	if strings.TrimSpace(location) == "" {
		return Complaint{}, fmt.Errorf("%w: location is required", domain.ErrInvalidComplaint)
	}
	return Reconstruct(id, location, description, clonePayload(payload)), nil
}

// Reconstruct creates a Complaint without validation (storage hydration).
// The normalized description is derived here, once.
func Reconstruct(id, location, description string, payload map[string]string) Complaint {
	return Complaint{
		id:          id,
		location:    location,
		description: description,
		normalized:  textnorm.Normalize(description),
		payload:     payload,
	}
}

// ID returns the complaint identifier.
func (c Complaint) ID() string { return c.id }

// Location returns the partition key.
func (c Complaint) Location() string { return c.location }

// Description returns the raw description.
func (c Complaint) Description() string { return c.description }

// Normalized returns the normalized description.
func (c Complaint) Normalized() string { return c.normalized }

// Payload returns the extra columns.
func (c Complaint) Payload() map[string]string { return c.payload }

func clonePayload(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
