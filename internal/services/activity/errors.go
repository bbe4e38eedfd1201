package activity

import "errors"

var (
	ErrCreateActivity = errors.New("failed to record activity")
	ErrListActivities = errors.New("failed to list activities")
)
