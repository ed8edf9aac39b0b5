package valueobjects

// AuthMethod is how a principal proves its identity.
type AuthMethod string

const (
	AuthMethodPassword AuthMethod = "password"
	AuthMethodGoogle   AuthMethod = "google.com"
)

func (m AuthMethod) String() string {
	return string(m)
}

func (m AuthMethod) IsValid() bool {
	return m == AuthMethodPassword || m == AuthMethodGoogle
}

// IsFederated reports whether the method is backed by an external provider.
func (m AuthMethod) IsFederated() bool {
	return m == AuthMethodGoogle
}
