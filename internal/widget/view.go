package widget

// View renders widget state. All methods are called from the event loop
// goroutine only.
type View interface {
	// Form mode.
	HideAllSteps()
	ShowStep(step int)
	SetProgress(fraction float64, activeDots int)
	SetValidation(step int, message string)
	FocusStepInput(step int)
	ShowAlert(message string)

	// ShowConversation hides the form and greets the visitor. An empty
	// name keeps the default greeting.
	ShowConversation(name string)
	RenderMessage(msg Message, html string)
	ClearMessages()
	ClearInput()
	SetSendEnabled(enabled bool)
	DimQuickReplies()
	ShowTyping()
	HideTyping()
	ScrollToLatest()
	FocusInput()

	SetWindow(open, minimized bool)
	ShowNotificationBadge(visible bool)
}
