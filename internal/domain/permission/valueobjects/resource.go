package valueobjects

import "fmt"

// Resource names a kind of record guarded by the policy.
type Resource string

const (
	ResourceFeedback    Resource = "feedback"
	ResourceTicket      Resource = "ticket"
	ResourceTicketReply Resource = "ticket_reply"
	ResourceInteraction Resource = "interaction"
	ResourceUpload      Resource = "upload"
)

var validResources = map[Resource]bool{
	ResourceFeedback:    true,
	ResourceTicket:      true,
	ResourceTicketReply: true,
	ResourceInteraction: true,
	ResourceUpload:      true,
}

func NewResource(resource string) (Resource, error) {
	r := Resource(resource)
	if !validResources[r] {
		return "", fmt.Errorf("invalid resource: %s", resource)
	}
	return r, nil
}

func (r Resource) String() string {
	return string(r)
}
