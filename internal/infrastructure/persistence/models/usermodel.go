package models

// ProfileModel is the durable profile record keyed by principal id.
type ProfileModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Email       string `gorm:"size:255;not null;index"`
	Role        string `gorm:"size:20;not null"`
	DisplayName string `gorm:"size:100;not null"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli;not null"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// CredentialModel authenticates a principal. Password credentials are
// unique per email; federated ones per provider subject.
type CredentialModel struct {
	PrincipalID     string  `gorm:"primaryKey;size:64"`
	Email           string  `gorm:"size:255;not null;uniqueIndex:idx_credentials_method_email,priority:2"`
	Method          string  `gorm:"size:32;not null;uniqueIndex:idx_credentials_method_email,priority:1"`
	PasswordHash    string  `gorm:"size:255"`
	ProviderSubject *string `gorm:"size:255;uniqueIndex"`
	CreatedAt       int64   `gorm:"autoCreateTime:milli;not null"`
	LastSignInAt    int64   `gorm:"not null"`
}

func (CredentialModel) TableName() string {
	return "credentials"
}
