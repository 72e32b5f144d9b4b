package event

import "fmt"

// DuplicateEventError reports that an event's effect has already been
// applied. Informational: redelivery under at-least-once transport is
// expected, and callers treat this as success.
type DuplicateEventError struct {
	Key string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("event already applied: %s", e.Key)
}

// OutOfOrderEventError reports that an event arrived before its
// prerequisite, e.g. a deletion before the creation it inverts. The
// transport should redeliver later; dropping it would be a
// correctness bug.
type OutOfOrderEventError struct {
	Key      string
	Requires string
}

func (e *OutOfOrderEventError) Error() string {
	return fmt.Sprintf("event %s out of order: requires %s first", e.Key, e.Requires)
}
