package vecindex

// Metadata is the enumerated set of optional provenance fields attached to
// an indexed point. Fields absent at ingest time stay empty here; tag
// renderers substitute sentinels so tag shape is stable across calls.
type Metadata struct {
	DocType   string `json:"doc_type,omitempty"`
	Source    string `json:"source,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Role      string `json:"role,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
