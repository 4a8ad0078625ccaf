package complaint

import (
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// buildHashFields flattens a complaint into a map for HSET.
func buildHashFields(c *domcomplaint.Complaint) map[string]string {
	payload := c.Payload()
	m := make(map[string]string, 2+len(payload))
	m[domcomplaint.FieldLocation] = c.Location()
	m[domcomplaint.FieldDescription] = c.Description()
	for k, v := range payload {
		m[k] = v
	}
	return m
}

// parseHashFields rebuilds a complaint from a stored hash.
// ok is false when the hash lacks a location (vanished or foreign key).
func parseHashFields(id string, m map[string]string) (c domcomplaint.Complaint, ok bool) {
	location, ok := m[domcomplaint.FieldLocation]
	if !ok || location == "" {
		return domcomplaint.Complaint{}, false
	}

	var payload map[string]string
	for k, v := range m {
		if k == domcomplaint.FieldLocation || k == domcomplaint.FieldDescription {
			continue
		}
		if payload == nil {
			payload = make(map[string]string, len(m)-2)
		}
		payload[k] = v
	}

	return domcomplaint.Reconstruct(id, location, m[domcomplaint.FieldDescription], payload), true
}
