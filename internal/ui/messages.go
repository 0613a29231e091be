package ui

// ComposeRequestMsg asks the root model to open a reply to EmailID with
// Seed as the initial body.
type ComposeRequestMsg struct {
	EmailID string
	Seed    string
}

// OpenEmailMsg asks the root model to show EmailID in the detail view.
type OpenEmailMsg struct {
	EmailID string
}

// BackMsg asks the root model to close the current modal.
type BackMsg struct{}
