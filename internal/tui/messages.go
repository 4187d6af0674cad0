package tui

// Results of the commands the model starts. Each carries the error of the operation, if any.
type (
	loginResultMsg struct{ err error }
	refreshedMsg   struct{ err error }
	savedMsg       struct{ err error }
	deletedMsg     struct{ err error }
)
