package assistant

import (
	"strings"
	"unicode"
)

var affirmativeWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "y": true, "sure": true,
	"ok": true, "okay": true, "confirm": true, "confirmed": true, "correct": true,
	"absolutely": true, "definitely": true, "proceed": true,
}

var affirmativePhrases = []string{"go ahead", "book it", "please confirm", "sounds good", "that's right", "looks good"}

var negativeMessages = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "stop": true, "abort": true, "quit": true,
	"never mind": true, "nevermind": true, "forget it": true, "no thanks": true, "no thank you": true,
	"cancel it": true, "cancel booking": true, "cancel the booking": true, "cancel my booking": true,
	"stop booking": true, "i changed my mind": true,
}

func normalize(msg string) string {
	msg = strings.ToLower(strings.TrimSpace(msg))
	msg = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '\'' {
			return r
		}
		return ' '
	}, msg)
	return strings.Join(strings.Fields(msg), " ")
}

// isAffirmative reports whether msg agrees to the pending question.
func isAffirmative(msg string) bool {
	n := normalize(msg)
	if n == "" || isNegative(msg) {
		return false
	}
	words := strings.Fields(n)
	for _, w := range words {
		// "yes, but 3 tickets" carries a change and goes through extraction
		if w == "not" || w == "don't" || w == "dont" || w == "but" || strings.ContainsAny(w, "0123456789") {
			return false
		}
	}
	if affirmativeWords[words[0]] {
		return true
	}
	for _, p := range affirmativePhrases {
		if strings.Contains(n, p) {
			return true
		}
	}
	return false
}

var confirmationFiller = map[string]bool{
	"please": true, "it": true, "i": true, "said": true, "already": true, "thanks": true,
	"thank": true, "you": true, "do": true, "just": true, "that": true, "go": true, "ahead": true,
	"book": true, "sounds": true, "good": true, "looks": true, "that's": true, "right": true,
}

// isBareConfirmation reports whether msg is an agreement and nothing else,
// such as a repeated "yes" rather than "sure, book the Louvre too".
func isBareConfirmation(msg string) bool {
	if !isAffirmative(msg) {
		return false
	}
	for _, w := range strings.Fields(normalize(msg)) {
		if !affirmativeWords[w] && !confirmationFiller[w] {
			return false
		}
	}
	return true
}

// isNegative reports whether msg abandons the booking outright.
func isNegative(msg string) bool {
	return negativeMessages[normalize(msg)]
}
