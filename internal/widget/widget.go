package widget

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/responder"
)

// Delays of the visible transitions.
const (
	StepSettleDelay  = 50 * time.Millisecond
	StepFocusDelay   = 150 * time.Millisecond
	ScrollDelay      = 100 * time.Millisecond
	OpenFocusDelay   = 300 * time.Millisecond
	WelcomeDelay     = 3 * time.Second
	QuickReplyDelay  = 1500 * time.Millisecond
	MinLocalDelay    = 1000 * time.Millisecond
	LocalDelayJitter = 2000 * time.Millisecond
)

const inboxSize = 64

// Widget is the chat state machine. Handle is only ever called from one
// goroutine, either Run or a test calling Pump.
type Widget struct {
	view        View
	sched       Scheduler
	gateway     *LeadGateway
	backend     Backend
	responder   *responder.Responder
	transcripts *TranscriptStore
	now         func() time.Time
	replyDelay  func() time.Duration
	log         *logrus.Entry

	ctx   context.Context
	inbox chan Event
	done  chan struct{}

	isOpen         bool
	isMinimized    bool
	form           *StepForm
	leadID         string
	formCompleted  bool
	messages       []Message
	input          string
	submitting     bool
	pendingReplies int
	repliesDimmed  bool
}

type Option func(*Widget)

func WithScheduler(s Scheduler) Option {
	return func(w *Widget) { w.sched = s }
}

func WithResponder(r *responder.Responder) Option {
	return func(w *Widget) { w.responder = r }
}

func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// WithReplyDelay overrides the random delay before a local reply.
func WithReplyDelay(delay func() time.Duration) Option {
	return func(w *Widget) { w.replyDelay = delay }
}

func New(view View, backend Backend, transcripts *TranscriptStore, opts ...Option) *Widget {
	w := &Widget{
		view:        view,
		sched:       RealScheduler(),
		gateway:     NewLeadGateway(backend),
		backend:     backend,
		responder:   responder.New(),
		transcripts: transcripts,
		now:         time.Now,
		replyDelay:  randomReplyDelay,
		log:         logrus.WithField("component", "widget"),
		ctx:         context.Background(),
		inbox:       make(chan Event, inboxSize),
		done:        make(chan struct{}),
		form:        NewStepForm(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// randomReplyDelay is uniform in [MinLocalDelay, MinLocalDelay+LocalDelayJitter).
func randomReplyDelay() time.Duration {
	return MinLocalDelay + time.Duration(rand.Int63n(int64(LocalDelayJitter)))
}

// Start restores the saved session and schedules the welcome badge. ctx
// bounds storage and backend calls made later on.
func (w *Widget) Start(ctx context.Context) {
	w.ctx = ctx
	w.resetForm()

	session, err := w.transcripts.LoadSession(ctx)
	if err != nil {
		w.log.WithError(err).Warn("Could not read saved session")
	}
	if session.FormCompleted {
		w.leadID = session.LeadID
		w.formCompleted = true
		w.activateConversation("")
	}

	w.after(WelcomeDelay, welcomeDue{})
}

// Run starts the widget and processes events until ctx is done.
func (w *Widget) Run(ctx context.Context) error {
	w.Start(ctx)
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-w.inbox:
			w.Handle(ev)
		}
	}
}

// Dispatch queues ev for the loop. It is safe from any goroutine and
// drops the event once Run has returned.
func (w *Widget) Dispatch(ev Event) {
	select {
	case w.inbox <- ev:
	case <-w.done:
	}
}

// Pump handles queued events until the queue is empty.
func (w *Widget) Pump() {
	for {
		select {
		case ev := <-w.inbox:
			w.Handle(ev)
		default:
			return
		}
	}
}

// Handle applies one event.
func (w *Widget) Handle(ev Event) {
	switch e := ev.(type) {
	case ToggleChat:
		if w.isOpen {
			w.closeChat()
		} else {
			w.openChat()
		}
	case OpenChat:
		w.openChat()
	case CloseChat:
		w.closeChat()
	case MinimizeChat:
		if w.isOpen {
			w.isMinimized = !w.isMinimized
			w.view.SetWindow(true, w.isMinimized)
		}
	case InputChanged:
		w.input = e.Text
		w.view.SetSendEnabled(strings.TrimSpace(e.Text) != "")
	case SetField:
		w.form.Set(e.Field, e.Value)
	case NextStep:
		w.nextStep(e.Target)
	case BackStep:
		if !w.formCompleted && w.form.InRange(e.Target) {
			w.transitionTo(e.Target)
		}
	case SubmitForm:
		w.submitForm()
	case SendMessage:
		w.postUserMessage(w.input, false)
	case QuickReply:
		w.postUserMessage(e.Text, true)

	case stepSettled:
		if w.formCompleted {
			return
		}
		w.form.moveTo(e.step)
		w.view.ShowStep(e.step)
		w.view.SetProgress(w.form.Progress())
		w.after(StepFocusDelay, focusStep{step: e.step})
	case focusStep:
		if !w.formCompleted && w.form.Current() == e.step {
			w.view.FocusStepInput(e.step)
		}
	case focusInput:
		if w.isOpen {
			w.view.FocusInput()
		}
	case scrollSettled:
		w.view.ScrollToLatest()
	case welcomeDue:
		if !w.isOpen {
			w.view.ShowNotificationBadge(true)
		}
	case localReply:
		w.deliverReply(w.responder.GenerateReply(e.text))
	case backendReply:
		reply := e.reply
		if e.err != nil {
			w.log.WithError(e.err).Warn("Chat message was not answered by the backend, showing fallback")
			reply = MessageFallback
		}
		w.deliverReply(reply)
	case leadResult:
		w.finishSubmit(e)
	default:
		w.log.Warnf("Unhandled widget event %T", ev)
	}
}

func (w *Widget) after(d time.Duration, ev Event) {
	w.sched.After(d, func() { w.Dispatch(ev) })
}

func (w *Widget) openChat() {
	w.isOpen = true
	w.isMinimized = false
	w.view.SetWindow(true, false)
	w.view.ShowNotificationBadge(false)
	w.after(OpenFocusDelay, focusInput{})
}

func (w *Widget) closeChat() {
	w.isOpen = false
	w.isMinimized = false
	w.view.SetWindow(false, false)
}

func (w *Widget) resetForm() {
	w.form.Reset()
	w.view.HideAllSteps()
	w.view.ShowStep(1)
	w.view.SetProgress(w.form.Progress())
}

func (w *Widget) nextStep(target int) {
	if w.formCompleted {
		return
	}
	if w.form.Current() == StepCount {
		w.submitForm()
		return
	}
	if !w.form.InRange(target) {
		w.log.WithField("target", target).Debug("Ignoring transition to a step that does not exist")
		return
	}

	current := w.form.Current()
	if !w.form.ValidateCurrent() {
		w.view.SetValidation(current, ValidationRequired)
		return
	}
	w.view.SetValidation(current, "")
	w.transitionTo(target)
}

// transitionTo hides every step now and shows target once the settle
// delay has passed.
func (w *Widget) transitionTo(target int) {
	w.view.HideAllSteps()
	w.after(StepSettleDelay, stepSettled{step: target})
}

func (w *Widget) submitForm() {
	if w.formCompleted {
		return
	}
	if w.submitting {
		w.log.Info("Lead submission already in flight, ignoring submit")
		return
	}

	fields := w.form.Fields()
	if err := w.gateway.Validate(fields); err != nil {
		w.view.ShowAlert(submitAlert(err))
		return
	}

	w.submitting = true
	ctx := w.ctx
	w.sched.Go(func() {
		leadID, err := w.gateway.Submit(ctx, fields)
		w.Dispatch(leadResult{leadID: leadID, name: fields.Name, err: err})
	})
}

func (w *Widget) finishSubmit(res leadResult) {
	w.submitting = false
	if res.err != nil {
		w.log.WithError(res.err).Warn("Lead submission failed")
		w.view.ShowAlert(submitAlert(res.err))
		return
	}

	w.leadID = res.leadID
	w.formCompleted = true
	if err := w.transcripts.SaveSession(w.ctx, res.leadID); err != nil {
		w.log.WithError(err).Warn("Could not persist lead session")
	}
	w.log.WithField("lead_id", res.leadID).Info("Lead captured, switching to conversation")
	w.activateConversation(res.name)
}

func (w *Widget) activateConversation(name string) {
	w.view.ShowConversation(name)
	w.loadHistory()
}

// loadHistory replaces the in-memory transcript with the saved one.
func (w *Widget) loadHistory() {
	if !w.formCompleted {
		return
	}
	messages, err := w.transcripts.LoadTranscript(w.ctx)
	if err != nil {
		w.log.WithError(err).Warn("Could not load chat history")
		return
	}
	if len(messages) == 0 {
		return
	}

	w.messages = messages
	w.view.ClearMessages()
	hasUser := false
	for _, msg := range messages {
		w.view.RenderMessage(msg, FormatMessage(msg.Text))
		if msg.Sender == SenderUser {
			hasUser = true
		}
	}
	if hasUser {
		w.dimQuickReplies()
	}
	w.after(ScrollDelay, scrollSettled{})
}

func (w *Widget) postUserMessage(text string, quick bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !quick {
		w.input = ""
		w.view.ClearInput()
		w.view.SetSendEnabled(false)
	}

	w.appendMessage(text, SenderUser)
	w.pendingReplies++
	w.view.ShowTyping()

	switch {
	case quick:
		w.after(QuickReplyDelay, localReply{text: text})
	case w.leadID != "" && w.formCompleted:
		ctx, leadID := w.ctx, w.leadID
		w.sched.Go(func() {
			reply, err := w.backend.SendMessage(ctx, leadID, text)
			w.Dispatch(backendReply{reply: reply, err: err})
		})
	default:
		w.after(w.replyDelay(), localReply{text: text})
	}
}

func (w *Widget) deliverReply(reply string) {
	if w.pendingReplies > 0 {
		w.pendingReplies--
	}
	w.view.HideTyping()
	w.appendMessage(reply, SenderBot)
	if w.pendingReplies > 0 {
		w.view.ShowTyping()
	}
}

func (w *Widget) appendMessage(text string, sender Sender) {
	msg := Message{Text: text, Sender: sender, Timestamp: w.now().Format(TimestampLayout)}
	w.messages = append(w.messages, msg)

	if sender == SenderUser {
		w.dimQuickReplies()
	}
	w.view.RenderMessage(msg, FormatMessage(text))
	w.after(ScrollDelay, scrollSettled{})

	if err := w.transcripts.SaveTranscript(w.ctx, w.messages); err != nil {
		w.log.WithError(err).Warn("Could not save chat history")
	}
}

func (w *Widget) dimQuickReplies() {
	if w.repliesDimmed {
		return
	}
	w.repliesDimmed = true
	w.view.DimQuickReplies()
}

// Messages returns a copy of the in-memory transcript.
func (w *Widget) Messages() []Message {
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// LeadID returns the lead id and whether the form has been completed.
func (w *Widget) LeadID() (string, bool) {
	return w.leadID, w.formCompleted
}

// CurrentStep returns the visible form step.
func (w *Widget) CurrentStep() int {
	return w.form.Current()
}
