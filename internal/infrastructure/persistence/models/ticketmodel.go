package models

import "gorm.io/datatypes"

type TicketModel struct {
	ID          string                               `gorm:"primaryKey;size:32"`
	Number      string                               `gorm:"uniqueIndex;size:50;not null"`
	UserID      string                               `gorm:"size:64;not null;index"`
	Email       string                               `gorm:"size:255;not null"`
	Subject     string                               `gorm:"size:200;not null"`
	Description string                               `gorm:"type:text;not null"`
	Priority    string                               `gorm:"size:20;not null"`
	Status      string                               `gorm:"size:20;not null;index"`
	Attachments datatypes.JSONSlice[AttachmentModel] `gorm:"not null"`
	CreatedAt   int64                                `gorm:"autoCreateTime:milli;not null;index"`
	UpdatedAt   int64                                `gorm:"autoUpdateTime:milli;not null"`
	ResolvedAt  *int64

	// Note: No foreign key constraints or associations.
	// Replies are tied to tickets by application logic only.
}

func (TicketModel) TableName() string {
	return "tickets"
}

type TicketReplyModel struct {
	ID         string `gorm:"primaryKey;size:32"`
	TicketID   string `gorm:"size:32;not null;index"`
	AdminID    string `gorm:"size:64;not null"`
	AdminEmail string `gorm:"size:255;not null"`
	Message    string `gorm:"type:text;not null"`
	CreatedAt  int64  `gorm:"autoCreateTime:milli;not null;index"`
}

func (TicketReplyModel) TableName() string {
	return "ticket_replies"
}
