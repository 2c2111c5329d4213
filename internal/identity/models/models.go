// Package models holds the discovery records served by the WebFinger endpoint.
package models

// LinkRecord is one relation advertised for an identity. Type is empty when
// the configuration did not supply one and is then omitted from JSON.
type LinkRecord struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

// DiscoveryRecord is the JRD document for one identity.
type DiscoveryRecord struct {
	Subject string       `json:"subject"`
	Aliases []string     `json:"aliases"`
	Links   []LinkRecord `json:"links"`
}

// Registry maps resource identifiers (acct:<email>) to discovery records.
// It is populated once by NewRegistry and never mutated afterwards, so it is
// safe for concurrent readers without locking.
type Registry struct {
	records map[string]DiscoveryRecord
}

// NewRegistry indexes records by subject in the given order. A later record
// with the same subject replaces an earlier one.
func NewRegistry(records []DiscoveryRecord) *Registry {
	r := &Registry{records: make(map[string]DiscoveryRecord, len(records))}
	for _, rec := range records {
		if rec.Subject == "" {
			continue
		}
		if rec.Aliases == nil {
			rec.Aliases = []string{}
		}
		if rec.Links == nil {
			rec.Links = []LinkRecord{}
		}
		r.records[rec.Subject] = rec
	}
	return r
}

// Get returns the record stored for resource using exact string matching.
func (r *Registry) Get(resource string) (DiscoveryRecord, bool) {
	if r == nil {
		return DiscoveryRecord{}, false
	}
	rec, ok := r.records[resource]
	return rec, ok
}

// Len returns the number of identities.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}
