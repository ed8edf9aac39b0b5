package usecases

import (
	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
)

// FeedbackLiveQueries are the standing feedback subscriptions the portal
// offers.
type FeedbackLiveQueries struct {
	hub    *livequery.Hub
	source livequery.Source[*feedback.Feedback]
}

func NewFeedbackLiveQueries(hub *livequery.Hub, source livequery.Source[*feedback.Feedback]) *FeedbackLiveQueries {
	return &FeedbackLiveQueries{hub: hub, source: source}
}

// MineQuery selects a customer's own feedback. It is unsorted at the source.
func MineQuery(ownerID string) livequery.Query {
	return livequery.From(livequery.CollectionFeedback).Where(livequery.FieldUserID, ownerID)
}

// AllQuery selects every feedback record, newest first.
func AllQuery() livequery.Query {
	return livequery.From(livequery.CollectionFeedback).Sorted(livequery.FieldCreatedAt, livequery.Descending)
}

// Mine delivers the owner's feedback, newest first.
func (q *FeedbackLiveQueries) Mine(ownerID string, callback func(livequery.Snapshot[*feedback.Feedback])) livequery.Disposer {
	return livequery.WatchNewestFirst(q.hub, MineQuery(ownerID), q.source, callback)
}

// All delivers every feedback record, newest first.
func (q *FeedbackLiveQueries) All(callback func(livequery.Snapshot[*feedback.Feedback])) livequery.Disposer {
	return livequery.Watch(q.hub, AllQuery(), q.source, callback)
}

// Source exposes the backing source for composite views.
func (q *FeedbackLiveQueries) Source() livequery.Source[*feedback.Feedback] {
	return q.source
}
