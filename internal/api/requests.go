package api

import (
	"time"

	"github.com/hw-score/scoring-api/internal/scoring"
)

// MethodRequest is the authenticated envelope every API call arrives in.
type MethodRequest struct {
	Account   string
	Login     string
	Token     string
	Method    string
	Arguments map[string]any
}

// parseMethodRequest validates the request envelope. On failure the returned
// FieldErrors is non-empty and the request must be rejected with 422.
func parseMethodRequest(body map[string]any) (*MethodRequest, FieldErrors) {
	errs := make(FieldErrors)
	req := &MethodRequest{}

	// account is the only optional envelope field.
	if s, ok, err := stringField(body, "account"); err != nil {
		errs.add("account", "%s", err)
	} else if ok {
		req.Account = s
	}

	if s, ok := requiredString(body, "login", errs); ok {
		req.Login = s
	}
	if s, ok := requiredString(body, "token", errs); ok {
		req.Token = s
	}
	if s, ok := requiredString(body, "method", errs); ok {
		req.Method = s
	}

	if !present(body, "arguments") {
		errs.add("arguments", "field is required")
	} else if args, ok := body["arguments"].(map[string]any); ok {
		req.Arguments = args
	} else {
		errs.add("arguments", "arguments must be an object")
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

// OnlineScoreRequest is the argument set of the online_score method. Has
// lists the argument names that arrived non-null; it feeds the request log
// and the pair-presence rule.
type OnlineScoreRequest struct {
	Profile scoring.Profile
	Has     []string

	hasPhone     bool
	hasEmail     bool
	hasFirstName bool
	hasLastName  bool
	hasGender    bool
	hasBirthday  bool
}

// scoreArgumentFields is the argument order reported in Has.
var scoreArgumentFields = []string{"first_name", "last_name", "email", "phone", "birthday", "gender"}

// parseOnlineScoreRequest validates online_score arguments. Every field is
// optional individually; HasValidPair enforces the cross-field rule.
func parseOnlineScoreRequest(args map[string]any, now time.Time) (*OnlineScoreRequest, FieldErrors) {
	errs := make(FieldErrors)
	req := &OnlineScoreRequest{}

	if s, ok, err := stringField(args, "first_name"); err != nil {
		errs.add("first_name", "%s", err)
	} else if ok {
		req.Profile.FirstName = s
		req.hasFirstName = true
	}
	if s, ok, err := stringField(args, "last_name"); err != nil {
		errs.add("last_name", "%s", err)
	} else if ok {
		req.Profile.LastName = s
		req.hasLastName = true
	}
	if s, ok := emailField(args, "email", errs); ok {
		req.Profile.Email = s
		req.hasEmail = true
	}
	if s, ok := phoneField(args, "phone", errs); ok {
		req.Profile.Phone = s
		req.hasPhone = true
	}
	if t, ok := birthdayField(args, "birthday", now, errs); ok {
		birthday := t
		req.Profile.Birthday = &birthday
		req.hasBirthday = true
	}
	if g, ok := genderField(args, "gender", errs); ok {
		gender := g
		req.Profile.Gender = &gender
		req.hasGender = true
	}

	if len(errs) > 0 {
		return nil, errs
	}

	for _, field := range scoreArgumentFields {
		if present(args, field) {
			req.Has = append(req.Has, field)
		}
	}
	return req, nil
}

// HasValidPair reports whether at least one complete attribute pair is
// present: phone+email, first_name+last_name, or gender+birthday.
func (r *OnlineScoreRequest) HasValidPair() bool {
	return (r.hasPhone && r.hasEmail) ||
		(r.hasFirstName && r.hasLastName) ||
		(r.hasGender && r.hasBirthday)
}

// ClientsInterestsRequest is the argument set of the clients_interests
// method.
type ClientsInterestsRequest struct {
	ClientIDs []int
	Date      *time.Time
}

// parseClientsInterestsRequest validates clients_interests arguments.
func parseClientsInterestsRequest(args map[string]any) (*ClientsInterestsRequest, FieldErrors) {
	errs := make(FieldErrors)
	req := &ClientsInterestsRequest{}

	if ids, ok := clientIDsField(args, "client_ids", errs); ok {
		req.ClientIDs = ids
	}
	if t, ok := dateField(args, "date", errs); ok {
		date := t
		req.Date = &date
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}
