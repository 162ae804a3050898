// Package widget is the visitor-side chat engine: the four-step lead form,
// the conversation with its typing indicator and reply resolution, and the
// local persistence of the session. It drives an abstract View and never
// touches a terminal or DOM itself.
package widget

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// TimestampLayout is the hour:minute clock shown next to each message.
const TimestampLayout = "15:04"

type Message struct {
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// QuickReplies are the canned prompts offered before the first user message.
var QuickReplies = []string{
	"Tell me about PAMM accounts",
	"What are the capital requirements?",
	"How does profit sharing work?",
	"I want to become a partner",
}

// Countries are the choices of the step 4 select.
var Countries = []string{
	"United States", "United Kingdom", "Canada", "Australia", "Germany",
	"France", "Italy", "Spain", "Netherlands", "Switzerland", "Japan",
	"Singapore", "Hong Kong", "UAE", "Other",
}
