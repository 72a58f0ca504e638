// internal/conversation/timeparse.go
package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aferrand/valet/api/schemas"
)

var hourWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var minuteWords = map[string]int{
	"fifteen": 15, "thirty": 30, "forty-five": 45, "fortyfive": 45,
}

// fillerWords are skipped without affecting the parse.
var fillerWords = map[string]bool{
	"at": true, "around": true, "about": true, "in": true, "the": true,
	"oclock": true, "o'clock": true,
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses a natural-language wall-clock expression: "7:30 pm",
// "7 AM", "19:30", "seven thirty in the evening". Any token it does not
// recognize fails the whole parse, so "nineteen thirty" is rejected rather
// than guessed at. A bare hour below 7 with no am/pm qualifier is taken as
// afternoon.
func ParseClock(input string) (schemas.TimeOfDay, bool) {
	var (
		hour        = -1
		minute      = 0
		meridiem    = "" // "am" or "pm"
		twentyFour  = false
		fail        = func() (schemas.TimeOfDay, bool) { return schemas.TimeOfDay{}, false }
	)

	setHour := func(h int, is24 bool) bool {
		if hour != -1 {
			return false
		}
		hour = h
		twentyFour = is24
		return true
	}
	setMeridiem := func(v string) bool {
		if meridiem != "" && meridiem != v {
			return false
		}
		meridiem = v
		return true
	}

	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if fillerWords[tok] {
			continue
		}

		// A trailing am/pm glued to a clock token: "7am", "7:30pm".
		if n := len(tok); n > 2 && (strings.HasSuffix(tok, "am") || strings.HasSuffix(tok, "pm")) {
			suffix := tok[n-2:]
			rest := tok[:n-2]
			if _, err := strconv.Atoi(strings.ReplaceAll(rest, ":", "")); err == nil {
				tokens[i] = rest
				tokens = append(tokens[:i+1], append([]string{suffix}, tokens[i+1:]...)...)
				tok = rest
			}
		}

		switch {
		case tok == "am" || tok == "morning":
			if !setMeridiem("am") {
				return fail()
			}
		case tok == "pm" || tok == "afternoon" || tok == "evening":
			if !setMeridiem("pm") {
				return fail()
			}
		case clockPattern.MatchString(tok):
			parts := clockPattern.FindStringSubmatch(tok)
			h, _ := strconv.Atoi(parts[1])
			mm, _ := strconv.Atoi(parts[2])
			if h > 23 || mm > 59 || !setHour(h, h > 12 || len(parts[1]) == 2 && parts[1][0] == '0') {
				return fail()
			}
			minute = mm
		default:
			if h, err := strconv.Atoi(tok); err == nil {
				if h > 23 || !setHour(h, h > 12) {
					return fail()
				}
				continue
			}
			if h, ok := hourWords[tok]; ok {
				if hour == -1 {
					if !setHour(h, false) {
						return fail()
					}
					continue
				}
				// "forty five" arrives as two tokens.
				if tok == "five" && i > 0 && tokens[i-1] == "forty" {
					continue
				}
				return fail()
			}
			if tok == "forty" && i+1 < len(tokens) && tokens[i+1] == "five" {
				if hour == -1 {
					return fail()
				}
				minute = 45
				continue
			}
			if mm, ok := minuteWords[tok]; ok {
				if hour == -1 {
					return fail()
				}
				minute = mm
				continue
			}
			return fail()
		}
	}

	if hour == -1 {
		return fail()
	}

	switch {
	case twentyFour || hour > 12:
		// 24-hour form, take it literally.
	case meridiem == "pm":
		if hour < 12 {
			hour += 12
		}
	case meridiem == "am":
		if hour == 12 {
			hour = 0
		}
	case hour < 7:
		// No qualifier and an early bare hour: nobody means 5:00 in the
		// morning when they say "five".
		hour += 12
	}

	return schemas.TimeOfDay{Hour: hour, Minute: minute}, true
}
