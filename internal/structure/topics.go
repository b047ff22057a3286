package structure

import (
	"strings"
)

// TopicSet tracks which topics already have a question, preventing
// duplicate coverage across tiers. It is local to one engine run and
// threaded explicitly through the tiers.
type TopicSet map[string]struct{}

func NewTopicSet() TopicSet {
	return make(TopicSet)
}

func (s TopicSet) Mark(key string) {
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

func (s TopicSet) MarkText(text string) {
	s.Mark(TopicKey(text))
}

func (s TopicSet) Covered(key string) bool {
	_, ok := s[key]
	return ok
}

func (s TopicSet) CoveredText(text string) bool {
	return s.Covered(TopicKey(text))
}

// topicKeyLen bounds the normalized prefix used as a topic key. Long
// question texts that share a 30-char prefix are the same topic.
const topicKeyLen = 30

var topicUmlauts = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// TopicKey normalizes text to its first 30 lower-cased characters with
// non-alphanumerics collapsed to underscores.
func TopicKey(text string) string {
	lower := topicUmlauts.Replace(strings.ToLower(strings.TrimSpace(text)))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range lower {
		if b.Len() >= topicKeyLen {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
