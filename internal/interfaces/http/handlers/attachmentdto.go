package handlers

import "github.com/frankincense-labs/cx-management/internal/domain/shared"

// AttachmentRequest is a descriptor returned by the upload endpoint and
// sent back verbatim with the record that owns the file.
type AttachmentRequest struct {
	URL  string `json:"url" validate:"required,max=2048"`
	Name string `json:"name" validate:"required,max=255"`
	Size int64  `json:"size" validate:"gte=0"`
	Type string `json:"type" validate:"required"`
}

func ToAttachments(in []AttachmentRequest) []shared.Attachment {
	out := make([]shared.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, shared.Attachment{URL: a.URL, Name: a.Name, Size: a.Size, Type: a.Type})
	}
	return out
}
