package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validationNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// payload parses a JSON object literal the way the handler does, so the
// validators see the same dynamic types.
func payload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestParseMethodRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErrs   []string
		wantMethod string
	}{
		{
			name:       "valid envelope",
			body:       `{"account": "acme", "login": "user", "token": "tok", "method": "online_score", "arguments": {}}`,
			wantMethod: "online_score",
		},
		{
			name:       "account is optional",
			body:       `{"login": "user", "token": "tok", "method": "m", "arguments": {}}`,
			wantMethod: "m",
		},
		{
			name:     "missing login and token",
			body:     `{"method": "m", "arguments": {}}`,
			wantErrs: []string{"login", "token"},
		},
		{
			name:     "null counts as absent",
			body:     `{"login": null, "token": "tok", "method": "m", "arguments": {}}`,
			wantErrs: []string{"login"},
		},
		{
			name:     "login must be a string",
			body:     `{"login": 5, "token": "tok", "method": "m", "arguments": {}}`,
			wantErrs: []string{"login"},
		},
		{
			name:     "missing arguments",
			body:     `{"login": "user", "token": "tok", "method": "m"}`,
			wantErrs: []string{"arguments"},
		},
		{
			name:     "arguments must be an object",
			body:     `{"login": "user", "token": "tok", "method": "m", "arguments": [1]}`,
			wantErrs: []string{"arguments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := parseMethodRequest(payload(t, tt.body))
			if len(tt.wantErrs) > 0 {
				require.Nil(t, req)
				for _, field := range tt.wantErrs {
					assert.Contains(t, errs, field)
				}
				return
			}
			require.Empty(t, errs)
			assert.Equal(t, tt.wantMethod, req.Method)
		})
	}
}

func TestParseOnlineScoreRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		wantErrs []string
	}{
		{name: "empty arguments validate", args: `{}`},
		{name: "valid full set", args: `{"first_name": "Ada", "last_name": "Lovelace", "email": "a@b.c", "phone": "79175002040", "birthday": "01.05.1990", "gender": 1}`},
		{name: "phone as number", args: `{"phone": 79175002040}`},
		{name: "email without at sign", args: `{"email": "not-an-email"}`, wantErrs: []string{"email"}},
		{name: "phone too short", args: `{"phone": "7917"}`, wantErrs: []string{"phone"}},
		{name: "phone wrong prefix", args: `{"phone": "89175002040"}`, wantErrs: []string{"phone"}},
		{name: "phone as bool", args: `{"phone": true}`, wantErrs: []string{"phone"}},
		{name: "birthday wrong format", args: `{"birthday": "1990-05-01"}`, wantErrs: []string{"birthday"}},
		{name: "birthday too old", args: `{"birthday": "01.01.1900"}`, wantErrs: []string{"birthday"}},
		{name: "gender out of range", args: `{"gender": 3}`, wantErrs: []string{"gender"}},
		{name: "gender as string", args: `{"gender": "1"}`, wantErrs: []string{"gender"}},
		{name: "first name as number", args: `{"first_name": 1}`, wantErrs: []string{"first_name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := parseOnlineScoreRequest(payload(t, tt.args), validationNow)
			if len(tt.wantErrs) > 0 {
				require.Nil(t, req)
				for _, field := range tt.wantErrs {
					assert.Contains(t, errs, field)
				}
				return
			}
			require.Empty(t, errs)
			require.NotNil(t, req)
		})
	}
}

func TestOnlineScorePairRule(t *testing.T) {
	tests := []struct {
		name  string
		args  string
		valid bool
	}{
		{name: "no pairs", args: `{}`, valid: false},
		{name: "phone without email", args: `{"phone": "79175002040"}`, valid: false},
		{name: "phone and email", args: `{"phone": "79175002040", "email": "a@b.c"}`, valid: true},
		{name: "names", args: `{"first_name": "Ada", "last_name": "Lovelace"}`, valid: true},
		{name: "empty strings still satisfy the pair", args: `{"first_name": "", "last_name": ""}`, valid: true},
		{name: "gender and birthday", args: `{"gender": 0, "birthday": "01.05.1990"}`, valid: true},
		{name: "mismatched halves", args: `{"phone": "79175002040", "last_name": "Lovelace"}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := parseOnlineScoreRequest(payload(t, tt.args), validationNow)
			require.Empty(t, errs)
			assert.Equal(t, tt.valid, req.HasValidPair())
		})
	}
}

func TestOnlineScoreHasTracksPresentFields(t *testing.T) {
	req, errs := parseOnlineScoreRequest(payload(t, `{"phone": "79175002040", "email": "a@b.c", "gender": null}`), validationNow)
	require.Empty(t, errs)
	assert.ElementsMatch(t, []string{"phone", "email"}, req.Has)
}

func TestParseClientsInterestsRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		wantIDs  []int
		wantErrs []string
	}{
		{name: "valid ids", args: `{"client_ids": [1, 2, 3]}`, wantIDs: []int{1, 2, 3}},
		{name: "valid with date", args: `{"client_ids": [4], "date": "15.03.2024"}`, wantIDs: []int{4}},
		{name: "missing ids", args: `{}`, wantErrs: []string{"client_ids"}},
		{name: "empty list", args: `{"client_ids": []}`, wantErrs: []string{"client_ids"}},
		{name: "non-integer ids", args: `{"client_ids": [1, "2"]}`, wantErrs: []string{"client_ids"}},
		{name: "fractional ids", args: `{"client_ids": [1.5]}`, wantErrs: []string{"client_ids"}},
		{name: "bad date", args: `{"client_ids": [1], "date": "2024-03-15"}`, wantErrs: []string{"date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := parseClientsInterestsRequest(payload(t, tt.args))
			if len(tt.wantErrs) > 0 {
				require.Nil(t, req)
				for _, field := range tt.wantErrs {
					assert.Contains(t, errs, field)
				}
				return
			}
			require.Empty(t, errs)
			assert.Equal(t, tt.wantIDs, req.ClientIDs)
		})
	}
}
