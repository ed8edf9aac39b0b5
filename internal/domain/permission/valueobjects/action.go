package valueobjects

import "fmt"

type Action string

const (
	ActionCreate Action = "create"
	// ActionRead covers records the caller owns or may see individually.
	ActionRead Action = "read"
	// ActionList covers every record of a resource.
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionReview Action = "review"
)

var validActions = map[Action]bool{
	ActionCreate: true,
	ActionRead:   true,
	ActionList:   true,
	ActionUpdate: true,
	ActionReview: true,
}

func NewAction(action string) (Action, error) {
	if action == "" {
		return "", fmt.Errorf("action cannot be empty")
	}

	a := Action(action)
	if !validActions[a] {
		return "", fmt.Errorf("invalid action: %s", action)
	}

	return a, nil
}

func (a Action) String() string {
	return string(a)
}
