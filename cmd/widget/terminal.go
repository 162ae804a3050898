package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"whisp.dev/chat-widget/internal/widget"
)

var stepLabels = map[int]string{
	1: "Your Name",
	2: "Email Address",
	3: "Phone Number",
	4: "Country",
}

// terminalView prints the widget to a line-oriented terminal. The input
// reader asks it which mode the widget is in, so its state is guarded.
type terminalView struct {
	out io.Writer

	mu           sync.Mutex
	step         int
	conversation bool
}

func newTerminalView(out io.Writer) *terminalView {
	return &terminalView{out: out}
}

// mode returns the visible step, or 0 once the conversation is shown.
func (v *terminalView) mode() (step int, conversation bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.step, v.conversation
}

func (v *terminalView) printf(format string, args ...interface{}) {
	fmt.Fprintf(v.out, format, args...)
}

func (v *terminalView) HideAllSteps() {
	v.mu.Lock()
	v.step = 0
	v.mu.Unlock()
}

func (v *terminalView) ShowStep(step int) {
	v.mu.Lock()
	v.step = step
	v.mu.Unlock()

	v.printf("\n[Step %d of %d] %s\n", step, widget.StepCount, stepLabels[step])
	if step == widget.StepCount {
		for i, c := range widget.Countries {
			v.printf("  %2d) %s\n", i+1, c)
		}
	}
}

func (v *terminalView) SetProgress(fraction float64, activeDots int) {
	v.printf("%s%s %3.0f%%\n", strings.Repeat("●", activeDots), strings.Repeat("○", widget.StepCount-activeDots), fraction*100)
}

func (v *terminalView) SetValidation(step int, message string) {
	if message != "" {
		v.printf("  ! %s\n", message)
	}
}

func (v *terminalView) FocusStepInput(step int) {
	v.printf("> ")
}

func (v *terminalView) ShowAlert(message string) {
	v.printf("\n*** %s ***\n", message)
}

func (v *terminalView) ShowConversation(name string) {
	v.mu.Lock()
	v.step = 0
	v.conversation = true
	v.mu.Unlock()

	if name == "" {
		name = "there"
	}
	v.printf("\nThanks %s! 👋\nNow I can provide personalized assistance. How can I help you today?\n", name)
	v.printf("Quick help (type /quick N):\n")
	for i, q := range widget.QuickReplies {
		v.printf("  %d) %s\n", i+1, q)
	}
}

func (v *terminalView) RenderMessage(msg widget.Message, html string) {
	who := "Agent"
	if msg.Sender == widget.SenderUser {
		who = "You"
	}
	v.printf("[%s] %s: %s\n", msg.Timestamp, who, msg.Text)
}

func (v *terminalView) ClearMessages() {
	v.printf("\n--- earlier messages ---\n")
}

func (v *terminalView) ClearInput() {}
func (v *terminalView) SetSendEnabled(bool) {}
func (v *terminalView) ScrollToLatest() {}
func (v *terminalView) FocusInput() {}
func (v *terminalView) DimQuickReplies() {}
func (v *terminalView) HideTyping() {}
func (v *terminalView) ShowTyping() { v.printf("Agent is typing...\n") }

func (v *terminalView) SetWindow(open, minimized bool) {
	switch {
	case !open:
		v.printf("[chat closed]\n")
	case minimized:
		v.printf("[chat minimized]\n")
	default:
		v.printf("[chat open]\n")
	}
}

func (v *terminalView) ShowNotificationBadge(visible bool) {
	if visible {
		v.printf("(1) Need help? Type /open to chat with us.\n")
	}
}
