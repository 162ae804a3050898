// Package responder produces the scripted bot replies used when the widget
// answers locally.
package responder

import (
	"math/rand"
	"strings"
)

type rule struct {
	topic    string
	keywords []string
	reply    string
}

// rules are checked in order; the first rule with a keyword contained in
// the lowercased input wins.
var rules = []rule{
	{
		topic:    "pamm",
		keywords: []string{"pamm"},
		reply:    "**PAMM Accounts** are perfect for new partners! 📈\n\n• **Minimum**: $5,000-$10,000\n• **Professional management** with transparent profit sharing\n• **Regulated brokers** (CySEC, FCA, ASIC)\n• **Success fee**: 20-30% of profits only\n\nWould you like to know more about getting started?",
	},
	{
		topic:    "capital",
		keywords: []string{"capital", "minimum", "requirement"},
		reply:    "**Capital Requirements** by partnership model:\n\n💰 **PAMM Accounts**: $5,000-$10,000\n💼 **MAM/Copy Trading**: $10,000-$25,000\n🏢 **Pool Account Management**: $25,000+\n\nWe can customize requirements based on your goals. Would you like a consultation?",
	},
	{
		topic:    "profit_sharing",
		keywords: []string{"profit", "sharing"},
		reply:    "**Profit Sharing** is completely transparent:\n\n✅ **Success Fee**: 20-30% of net profits only\n✅ **High Water Mark**: Fees only on new profit highs\n✅ **No Management Fees**: We earn when you profit\n✅ **Real-time Access**: 24/7 performance monitoring\n\n**Example**: $1,000 profit = You keep $750-800, we earn $200-250",
	},
	{
		topic:    "partner",
		keywords: []string{"partner", "become", "join"},
		reply:    "Great choice! 🤝 **Becoming a Partner** is easy:\n\n1️⃣ **Choose your model** (PAMM/MAM/Pool)\n2️⃣ **Initial consultation** with our team\n3️⃣ **KYC verification** process\n4️⃣ **Fund your account** & start growing\n\n**Ready to start?** I can connect you with our partnership specialist right now!",
	},
	{
		topic:    "legal",
		keywords: []string{"legal", "regulated", "license"},
		reply:    "**100% Legal & Regulated** ⚖️\n\n• **EU MiFID II** compliant\n• **US CFTC** guidelines adherence\n• **CySEC, FCA, ASIC** licensed brokers\n• **Segregated accounts** in Tier-1 banks\n• **Insurance coverage** up to regulatory limits\n\nYour funds are completely secure!",
	},
	{
		topic:    "security",
		keywords: []string{"risk", "safe", "security"},
		reply:    "**Maximum Security** is our priority 🛡️\n\n🏦 **Segregated Accounts** in top-tier banks\n🔒 **Bank-grade SSL** encryption\n📱 **2FA Security** for all accounts\n💼 **Regulatory Protection** (FSCS, ICF)\n⚖️ **Legal Framework** compliance\n\nYour investment is protected at every level!",
	},
	{
		topic:    "greeting",
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! 👋 Welcome to ForexDrift!\n\nI'm here to help you learn about our partnership opportunities. Whether you're interested in PAMM accounts, MAM trading, or pool management - I can guide you through everything!\n\n**What would you like to know first?**",
	},
	{
		topic:    "contact",
		keywords: []string{"contact", "speak", "human"},
		reply:    "I'd be happy to connect you with our team! 🤝\n\n**Contact Options:**\n📧 Email: support@forexdrift.com\n💬 Telegram: @forexdrift_support\n📞 Schedule a call with our partnership specialist\n\nWould you like me to arrange a **free consultation** for you?",
	},
	{
		topic:    "hours",
		keywords: []string{"time", "hours", "when"},
		reply:    "**Our Support Hours:**\n🌍 Monday-Friday: 24/5 (Global coverage)\n📱 Live Chat: Available now\n📧 Email: Replied within 2-4 hours\n💬 Telegram: Instant responses\n\n**Need immediate help?** I'm here 24/7!",
	},
}

// Fallbacks are the replies for input no rule matches.
var Fallbacks = []string{
	"That's a great question! 🤔 Let me help you find the right information. Could you be more specific about what you'd like to know regarding our partnership programs?",
	"I want to make sure I give you the best answer! 💡 Are you asking about PAMM accounts, capital requirements, profit sharing, or something else?",
	"Thanks for reaching out! 😊 Our partnership models (PAMM/MAM/Pool) each have unique benefits. Which one interests you most?",
	"I'm here to help with all your partnership questions! 🚀 Would you like to know about getting started, requirements, or how our profit sharing works?",
}

// Responder matches visitor input against the keyword rules.
type Responder struct {
	// pick returns an index in [0, n).
	pick func(n int) int
}

func New() *Responder {
	return &Responder{pick: rand.Intn}
}

// NewWithPicker returns a Responder that chooses fallbacks with pick.
func NewWithPicker(pick func(n int) int) *Responder {
	if pick == nil {
		pick = rand.Intn
	}
	return &Responder{pick: pick}
}

// GenerateReply returns the reply of the first matching rule, or a fallback.
func (r *Responder) GenerateReply(input string) string {
	if reply, ok := Match(input); ok {
		return reply
	}
	return Fallbacks[r.pick(len(Fallbacks))]
}

// Match returns the reply of the first rule matching input.
func Match(input string) (string, bool) {
	if rl := firstMatch(input); rl != nil {
		return rl.reply, true
	}
	return "", false
}

// Topic names the rule that matches input, or "" when none does.
func Topic(input string) string {
	if rl := firstMatch(input); rl != nil {
		return rl.topic
	}
	return ""
}

func firstMatch(input string) *rule {
	lowered := strings.ToLower(input)
	for i := range rules {
		for _, kw := range rules[i].keywords {
			if strings.Contains(lowered, kw) {
				return &rules[i]
			}
		}
	}
	return nil
}
