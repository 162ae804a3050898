package widget

// Event is anything the widget loop reacts to: visitor actions, timer
// expiries and network completions.
type Event interface {
	isEvent()
}

// Visitor actions.
type (
	ToggleChat   struct{}
	OpenChat     struct{}
	CloseChat    struct{}
	MinimizeChat struct{}

	// InputChanged carries the current content of the message input.
	InputChanged struct{ Text string }

	// SetField carries the current content of a form input.
	SetField struct {
		Field Field
		Value string
	}

	// NextStep validates the current step and moves to Target. On the last
	// step it submits instead.
	NextStep struct{ Target int }
	BackStep struct{ Target int }
	SubmitForm struct{}

	// SendMessage posts the current message input.
	SendMessage struct{}
	QuickReply  struct{ Text string }
)

// Completions posted back to the loop by timers and background calls.
type (
	stepSettled   struct{ step int }
	focusStep     struct{ step int }
	focusInput    struct{}
	scrollSettled struct{}
	welcomeDue    struct{}
	localReply    struct{ text string }
	backendReply  struct {
		reply string
		err   error
	}
	leadResult struct {
		leadID string
		name   string
		err    error
	}
)

func (ToggleChat) isEvent() {}
func (OpenChat) isEvent() {}
func (CloseChat) isEvent() {}
func (MinimizeChat) isEvent() {}
func (InputChanged) isEvent() {}
func (SetField) isEvent() {}
func (NextStep) isEvent() {}
func (BackStep) isEvent() {}
func (SubmitForm) isEvent() {}
func (SendMessage) isEvent() {}
func (QuickReply) isEvent() {}
func (stepSettled) isEvent() {}
func (focusStep) isEvent() {}
func (focusInput) isEvent() {}
func (scrollSettled) isEvent() {}
func (welcomeDue) isEvent() {}
func (localReply) isEvent() {}
func (backendReply) isEvent() {}
func (leadResult) isEvent() {}
