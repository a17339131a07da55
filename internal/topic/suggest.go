package topic

import "strings"

// Suggest proposes a topic for freshly recognized text by counting keyword
// hits per topic and picking the best-scoring one. It is a convenience for
// pre-filling the draft form, not a classifier: an empty string means no
// suggestion, and the user's own topic always wins.
func Suggest(text string) string {
	body := strings.ToLower(text)
	if strings.TrimSpace(body) == "" {
		return ""
	}

	scores := make(map[string]int)
	for _, entry := range keywords {
		if n := strings.Count(body, entry.keyword); n > 0 {
			scores[entry.topic] += n
		}
	}
	if len(scores) == 0 {
		return ""
	}

	// Ties resolve to the earliest topic in the keyword table.
	best, bestScore := "", 0
	for _, entry := range keywords {
		if s := scores[entry.topic]; s > bestScore {
			best, bestScore = entry.topic, s
		}
	}
	return best
}

type keywordEntry struct {
	keyword string
	topic   string
}

// Ordered with more specific phrases first so ties break predictably.
var keywords = []keywordEntry{
	// Philosophy
	{"epistemology", "Philosophy"},
	{"metaphysics", "Philosophy"},
	{"stoic", "Philosophy"},
	{"virtue", "Philosophy"},
	{"ethics", "Philosophy"},
	{"morality", "Philosophy"},
	{"philosoph", "Philosophy"},

	// History
	{"empire", "History"},
	{"revolution", "History"},
	{"medieval", "History"},
	{"dynasty", "History"},
	{"treaty", "History"},
	{"century", "History"},
	{"historian", "History"},
	{"war", "History"},

	// Science
	{"experiment", "Science"},
	{"hypothesis", "Science"},
	{"molecule", "Science"},
	{"quantum", "Science"},
	{"evolution", "Science"},
	{"physics", "Science"},
	{"biology", "Science"},
	{"chemistry", "Science"},
	{"theory", "Science"},

	// Psychology
	{"cognitive", "Psychology"},
	{"behavior", "Psychology"},
	{"memory", "Psychology"},
	{"perception", "Psychology"},
	{"psycholog", "Psychology"},

	// Economics
	{"market", "Economics"},
	{"inflation", "Economics"},
	{"capital", "Economics"},
	{"economy", "Economics"},
	{"economic", "Economics"},
	{"trade", "Economics"},

	// Poetry
	{"stanza", "Poetry"},
	{"verse", "Poetry"},
	{"rhyme", "Poetry"},
	{"poem", "Poetry"},
	{"poet", "Poetry"},

	// Fiction
	{"protagonist", "Fiction"},
	{"narrator", "Fiction"},
	{"novel", "Fiction"},
	{"chapter", "Fiction"},
	{"character", "Fiction"},

	// Religion
	{"scripture", "Religion"},
	{"theology", "Religion"},
	{"prayer", "Religion"},
	{"sacred", "Religion"},
	{"faith", "Religion"},

	// Politics
	{"parliament", "Politics"},
	{"democracy", "Politics"},
	{"election", "Politics"},
	{"policy", "Politics"},
	{"government", "Politics"},

	// Art
	{"painting", "Art"},
	{"sculpture", "Art"},
	{"gallery", "Art"},
	{"composition", "Art"},
	{"artist", "Art"},

	// Technology
	{"algorithm", "Technology"},
	{"software", "Technology"},
	{"computer", "Technology"},
	{"machine", "Technology"},
	{"internet", "Technology"},

	// Biography
	{"memoir", "Biography"},
	{"childhood", "Biography"},
	{"biograph", "Biography"},

	// Travel
	{"journey", "Travel"},
	{"voyage", "Travel"},
	{"expedition", "Travel"},
	{"traveler", "Travel"},

	// Cooking
	{"recipe", "Cooking"},
	{"ingredient", "Cooking"},
	{"simmer", "Cooking"},
	{"oven", "Cooking"},
}
