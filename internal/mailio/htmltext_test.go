package mailio

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "paragraphs become blank-line breaks",
			raw:  "<p>First paragraph.</p><p>Second paragraph.</p>",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "br breaks a line",
			raw:  "Line one<br>Line two",
			want: "Line one\nLine two",
		},
		{
			name: "list items on separate lines",
			raw:  "<ul><li>alpha</li><li>beta</li></ul>",
			want: "alpha\nbeta",
		},
		{
			name: "script and style stripped",
			raw:  "<style>p{color:red}</style><script>var x=1;</script><p>Visible</p>",
			want: "Visible",
		},
		{
			name: "entities decoded",
			raw:  "<p>Fish &amp; chips</p>",
			want: "Fish & chips",
		},
		{
			name: "nested inline markup flattened",
			raw:  "<p>Hello <b>bold</b> and <a href=\"https://example.com\">link</a>.</p>",
			want: "Hello bold and link .",
		},
		{
			name: "runs of spaces collapsed",
			raw:  "<p>spaced \t  out</p>",
			want: "spaced out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlToText(tt.raw); got != tt.want {
				t.Errorf("htmlToText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
