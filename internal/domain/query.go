package domain

import "time"

// Ordering is a validated sort key. The store appends an id tie-break so the
// resulting order is total and paginated fetches stay deterministic.
type Ordering struct {
	Field string
	Desc  bool
}

// MessageQuery is the immutable filter set for a message listing. All
// predicates are AND-combined; Search alone fans out with OR semantics over
// content, sender username, and conversation title. The requesting user's
// visibility restriction is not part of this value: the store applies it
// structurally, before any of these filters.
type MessageQuery struct {
	Content        string
	DateAfter      *time.Time
	DateBefore     *time.Time
	SenderUsername string
	SenderID       *int64
	ConversationID *int64
	Search         string
	Ordering       Ordering
}

// ConversationQuery is the filter set for a conversation listing.
type ConversationQuery struct {
	Search   string
	Ordering Ordering
}
