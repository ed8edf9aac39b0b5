// Package shared holds value types used by more than one aggregate.
package shared

import "fmt"

// Attachment describes a file stored in blob storage. It is embedded
// verbatim into the attachments array of the owning record.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Validate checks that the descriptor references a stored file.
func (a Attachment) Validate() error {
	if a.URL == "" {
		return fmt.Errorf("attachment url is required")
	}
	if a.Name == "" {
		return fmt.Errorf("attachment name is required")
	}
	if a.Size < 0 {
		return fmt.Errorf("attachment size cannot be negative")
	}
	return nil
}

// CopyAttachments returns an independent copy, never nil.
func CopyAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}
