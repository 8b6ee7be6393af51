package conversation

import "fmt"

// UserInputError is input the user has to fix. Its Message is shown to
// the user as is.
type UserInputError struct {
	Reason  string
	Message string
}

func (e *UserInputError) Error() string {
	return fmt.Sprintf("user input error: %s", e.Reason)
}
