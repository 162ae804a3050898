package widget

import "testing"

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"bold em and link",
			"**bold** and *em* and https://x.com",
			`<strong>bold</strong> and <em>em</em> and <a href="https://x.com" target="_blank" rel="noopener noreferrer">https://x.com</a>`,
		},
		{
			"markup is escaped",
			`<script>alert("x")</script>`,
			`&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;`,
		},
		{
			"link inside bold",
			"**https://x.com/a**",
			`<strong><a href="https://x.com/a" target="_blank" rel="noopener noreferrer">https://x.com/a</a></strong>`,
		},
		{"plain", "no markup here", "no markup here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMessage(tt.in); got != tt.want {
				t.Errorf("FormatMessage(%q)\n got %s\nwant %s", tt.in, got, tt.want)
			}
		})
	}
}
