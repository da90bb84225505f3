// Package query translates request parameters into validated query values
// executed by the store. Filters can only narrow the participant-scoped set
// the store starts from; nothing parsed here can widen it.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"chatapi/internal/domain"
)

// RecentWindow is how far back the "recent" convenience view reaches.
const RecentWindow = 24 * time.Hour

var defaultOrdering = domain.Ordering{Field: "created_at", Desc: true}

// Ordering fields recognized on message listings.
var messageOrderingFields = map[string]struct{}{
	"created_at": {},
	"id":         {},
}

// Ordering fields recognized on conversation listings.
var conversationOrderingFields = map[string]struct{}{
	"created_at": {},
	"id":         {},
	"title":      {},
}

// ParseMessageQuery builds a MessageQuery from request parameters.
//
// Recognized keys: content, date_after, date_before, user_username,
// conversation, search, ordering, plus the recent and mine flags. Unknown
// keys are ignored. Malformed dates and conversation ids fail with a
// validation error naming the parameter; an unrecognized ordering falls back
// to the default (newest first).
func ParseMessageQuery(values url.Values, requesterID int64, now time.Time) (domain.MessageQuery, error) {
	q := domain.MessageQuery{
		Content:        strings.TrimSpace(values.Get("content")),
		SenderUsername: strings.TrimSpace(values.Get("user_username")),
		Search:         strings.TrimSpace(values.Get("search")),
		Ordering:       parseOrdering(values.Get("ordering"), messageOrderingFields),
	}

	verr := &domain.ValidationError{}

	if after, err := parseDate(values.Get("date_after"), false); err != nil {
		verr.Add("date_after", err.Error())
	} else {
		q.DateAfter = after
	}
	if before, err := parseDate(values.Get("date_before"), true); err != nil {
		verr.Add("date_before", err.Error())
	} else {
		q.DateBefore = before
	}

	if raw := values.Get("conversation"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add("conversation", "must be a conversation id")
		} else {
			q.ConversationID = &id
		}
	}

	if !verr.Empty() {
		return domain.MessageQuery{}, verr
	}

	// Convenience views are plain filter configurations.
	if flagSet(values, "recent") && q.DateAfter == nil {
		after := now.Add(-RecentWindow)
		q.DateAfter = &after
	}
	if flagSet(values, "mine") {
		id := requesterID
		q.SenderID = &id
		q.SenderUsername = ""
	}

	return q, nil
}

// ParseConversationQuery builds a ConversationQuery from request parameters.
func ParseConversationQuery(values url.Values) domain.ConversationQuery {
	return domain.ConversationQuery{
		Search:   strings.TrimSpace(values.Get("search")),
		Ordering: parseOrdering(values.Get("ordering"), conversationOrderingFields),
	}
}

func parseOrdering(raw string, allowed map[string]struct{}) domain.Ordering {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultOrdering
	}
	desc := false
	if strings.HasPrefix(raw, "-") {
		desc = true
		raw = raw[1:]
	}
	if _, ok := allowed[raw]; !ok {
		return defaultOrdering
	}
	return domain.Ordering{Field: raw, Desc: desc}
}

// dateError is returned for malformed date_after/date_before values.
type dateError struct{}

func (dateError) Error() string {
	return "must be an ISO-8601 date (2006-01-02) or datetime (RFC 3339)"
}

// parseDate accepts a date or datetime. A bare date used as an upper bound is
// promoted to the end of that day, so both bounds stay inclusive.
func parseDate(raw string, upperBound bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if upperBound {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, dateError{}
}

// flagSet reports whether a boolean query flag is enabled. A bare presence
// ("?mine") counts as enabled, matching common client behaviour.
func flagSet(values url.Values, key string) bool {
	if _, ok := values[key]; !ok {
		return false
	}
	switch strings.ToLower(values.Get(key)) {
	case "false", "0", "no":
		return false
	}
	return true
}
