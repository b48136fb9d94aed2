package session

import "errors"

var (
	// ErrInputDisabled indicates a send while a load or a delete confirmation is pending
	ErrInputDisabled = errors.New("input is disabled while a chat is loading or a delete is pending")

	// ErrEmptyMessage indicates a send of a blank message
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNameRequired indicates the conversation must be named before it can be saved or replaced
	ErrNameRequired = errors.New("please name the current chat first, or clear it if you don't want to save it")

	// ErrUnsavedChanges indicates a load was refused to protect an unnamed, unsaved conversation
	ErrUnsavedChanges = errors.New("you have unsaved messages in the current chat; name and save it, or start a new chat before loading another")

	// ErrNothingToSave indicates a save of an empty conversation
	ErrNothingToSave = errors.New("no messages to save in the current chat")

	// ErrNoActiveThread indicates an operation that needs a saved thread
	ErrNoActiveThread = errors.New("no saved chat is active")

	// ErrNoPendingDelete indicates a confirmation without a prior delete request
	ErrNoPendingDelete = errors.New("no delete is pending")

	// ErrNoStore indicates a persistence operation on a controller without a store
	ErrNoStore = errors.New("chat history is not available in this mode")
)
