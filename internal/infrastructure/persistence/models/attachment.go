package models

// AttachmentModel is one element of a record's attachments JSON column.
type AttachmentModel struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
