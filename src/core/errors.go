package core

import "fmt"

// InvalidInputError reports a caller contract violation. It is never used for
// a page that simply holds no games.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid extraction input: %s", e.Reason)
}
