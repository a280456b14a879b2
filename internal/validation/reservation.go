// Package validation holds the request payload rules for reservation
// creation. The rules form a small ordered set evaluated with
// short-circuit semantics: the first violated rule wins and no
// persistence call is ever made on a violation. Each rule carries its
// own stable code so clients can branch on the exact failure.
package validation

import (
	"regexp"
	"time"

	"github.com/tbrintet/zik.eirb.fr/internal/model"
)

// Violation is the tagged result of a failed rule.
type Violation struct {
	Code    string // stable DOMAIN/REASON code, e.g. VALIDATION/TITLE_INVALID
	Message string // user-facing French message
}

// CreateReservationInput carries the raw decoded body fields. The
// interface{} types are deliberate: a rule must be able to reject a
// non-string title or date rather than have JSON binding mask it as a
// generic 400.
type CreateReservationInput struct {
	Title     interface{} `json:"title"`
	StartDate interface{} `json:"startDate"`
	EndDate   interface{} `json:"endDate"`
}

// CreateReservationPayload is the validated, typed form of the input.
// StartDate and EndDate keep the wire format; Start and End hold the
// parsed instants used for the ordering check.
type CreateReservationPayload struct {
	Title     string
	StartDate string
	EndDate   string
	Start     time.Time
	End       time.Time
}

// datePattern matches "YYYY-MM-DD HH:mm:ss": 4-digit year, 2-digit
// month/day/hour/minute/second, literal separators.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// createRule checks one aspect of the input, filling out accepted
// values as it goes. It returns nil when the rule holds.
type createRule struct {
	name  string
	check func(in *CreateReservationInput, out *CreateReservationPayload) *Violation
}

// createRules is evaluated in order; the first violation wins.
var createRules = []createRule{
	{name: "title", check: checkTitle},
	{name: "startDate", check: checkStartDate},
	{name: "endDate", check: checkEndDate},
	{name: "startBeforeEnd", check: checkStartBeforeEnd},
}

// CheckCreateReservation runs every rule in order and returns either
// the typed payload or the first violation encountered.
func CheckCreateReservation(in CreateReservationInput) (*CreateReservationPayload, *Violation) {
	var out CreateReservationPayload
	for _, rule := range createRules {
		if v := rule.check(&in, &out); v != nil {
			return nil, v
		}
	}
	return &out, nil
}

// checkTitle requires a string title of at most 100 characters. The
// lower bound is deliberately open: empty titles pass, matching the
// historical behaviour of the API.
func checkTitle(in *CreateReservationInput, out *CreateReservationPayload) *Violation {
	s, ok := in.Title.(string)
	if !ok || len([]rune(s)) > 100 {
		return &Violation{
			Code:    "VALIDATION/TITLE_INVALID",
			Message: "Le titre doit être une chaîne de caractères de maximum 100 caractères",
		}
	}
	out.Title = s
	return nil
}

func checkStartDate(in *CreateReservationInput, out *CreateReservationPayload) *Violation {
	t, raw, ok := parseDate(in.StartDate)
	if !ok {
		return &Violation{
			Code:    "VALIDATION/START_DATE_INVALID",
			Message: "La date de début doit être au format YYYY-MM-DD HH:mm:ss",
		}
	}
	out.StartDate, out.Start = raw, t
	return nil
}

func checkEndDate(in *CreateReservationInput, out *CreateReservationPayload) *Violation {
	t, raw, ok := parseDate(in.EndDate)
	if !ok {
		return &Violation{
			Code:    "VALIDATION/END_DATE_INVALID",
			Message: "La date de fin doit être au format YYYY-MM-DD HH:mm:ss",
		}
	}
	out.EndDate, out.End = raw, t
	return nil
}

func checkStartBeforeEnd(in *CreateReservationInput, out *CreateReservationPayload) *Violation {
	if !out.Start.Before(out.End) {
		return &Violation{
			Code:    "VALIDATION/START_DATE_BEFORE_END_DATE",
			Message: "La date de début doit être avant la date de fin",
		}
	}
	return nil
}

// parseDate accepts a value that is a string in the expected pattern
// and denotes a real calendar instant. A value like "2024-13-01
// 00:00:00" matches the pattern but fails the parse and is rejected
// with the same code.
func parseDate(v interface{}) (time.Time, string, bool) {
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return time.Time{}, "", false
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, s, true
}
