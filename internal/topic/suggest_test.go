package topic

import "testing"

func TestSuggest(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"whitespace", "   \n\t", ""},
		{"no match", "lorem ipsum dolor sit amet", ""},
		{"philosophy", "The Stoic view of virtue holds that ethics is primary.", "Philosophy"},
		{"history", "The empire collapsed after a century of war.", "History"},
		{"science", "The experiment confirmed the hypothesis about the molecule.", "Science"},
		{"poetry", "Each stanza ends the verse with a slant rhyme.", "Poetry"},
		{"case insensitive", "DEMOCRACY and ELECTION coverage", "Politics"},
		{"repeats outweigh", "recipe recipe recipe with one algorithm", "Cooking"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest(tt.text); got != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSuggestTieBreaksToTableOrder(t *testing.T) {
	// One hit each for Philosophy and Cooking; Philosophy appears first in
	// the keyword table.
	got := Suggest("a stoic in the oven")
	if got != "Philosophy" {
		t.Errorf("Suggest = %q, want Philosophy", got)
	}
}
