// Package models holds the GORM persistence models. Timestamps are stored
// as Unix milliseconds.
package models

// All returns every model, in creation order.
func All() []interface{} {
	return []interface{}{
		&ProfileModel{},
		&CredentialModel{},
		&FeedbackModel{},
		&TicketModel{},
		&TicketReplyModel{},
	}
}
