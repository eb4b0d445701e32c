package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Groceries", want: "Groceries"},
		{in: "  padded  ", want: "padded"},
		{in: "<b>Bold</b> move", want: "Bold move"},
		{in: `<script>alert("x")</script>Rent`, want: "Rent"},
		{in: "Food & Drinks", want: "Food & Drinks"},
		{in: "I <3 savings", want: "I <3 savings"},
		{in: "<b>x</b>", want: "x"},
		{in: "<i></i>", want: ""},
		{in: "&lt;script&gt;", want: ""},
		{in: "&lt;b&gt;Rent&lt;/b&gt;", want: "Rent"},
		{in: "&amp;lt;b&amp;gt;Rent", want: "Rent"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Text(tt.in)

			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<script")
			assert.NotContains(t, got, "<b>")
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	for _, in := range []string{"Food & Drinks", "&lt;i&gt;x", "a &amp;amp; b", "Tom &amp; Jerry"} {
		once := Text(in)
		assert.Equal(t, once, Text(once), in)
	}
}
