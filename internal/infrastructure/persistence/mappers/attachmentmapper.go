package mappers

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
)

func attachmentsToModel(in []shared.Attachment) []models.AttachmentModel {
	out := make([]models.AttachmentModel, 0, len(in))
	for _, a := range in {
		out = append(out, models.AttachmentModel{URL: a.URL, Name: a.Name, Size: a.Size, Type: a.Type})
	}
	return out
}

func attachmentsToDomain(in []models.AttachmentModel) []shared.Attachment {
	out := make([]shared.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, shared.Attachment{URL: a.URL, Name: a.Name, Size: a.Size, Type: a.Type})
	}
	return out
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := fromMillis(*ms)
	return &t
}
