package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/profile"
)

// fakeProfileStore serves profiles from a map.
type fakeProfileStore struct {
	profiles map[string]profile.Record
	getErr   error
}

func (s *fakeProfileStore) Get(ctx context.Context, userID string) (profile.Record, error) {
	if s.getErr != nil {
		return profile.Record{}, s.getErr
	}
	rec, ok := s.profiles[userID]
	if !ok {
		return profile.Record{}, profile.ErrNotFound
	}
	return rec, nil
}

func (s *fakeProfileStore) Upsert(ctx context.Context, rec profile.Record) error {
	s.profiles[rec.UserID] = rec
	return nil
}

// recordingNotifier captures pushes and optionally fails them.
type recordingNotifier struct {
	pushes  []pushCall
	pushErr error
}

type pushCall struct {
	token string
	n     Notification
}

func (r *recordingNotifier) Push(ctx context.Context, deviceToken string, n Notification) error {
	r.pushes = append(r.pushes, pushCall{token: deviceToken, n: n})
	return r.pushErr
}

func TestDispatcher_PushesToRegisteredDevice(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]profile.Record{
		"alice": {UserID: "alice", DisplayName: "Alice A."},
		"carol": {UserID: "carol", DisplayName: "Carol", DeviceToken: "token-carol"},
	}}
	notifier := &recordingNotifier{}
	d := NewDispatcher(store, notifier)

	d.NotifyOffline(context.Background(), "alice", "carol", "hi carol")

	require.Len(t, notifier.pushes, 1)
	assert.Equal(t, "token-carol", notifier.pushes[0].token)
	assert.Equal(t, "New message from Alice A.", notifier.pushes[0].n.Title)
	assert.Equal(t, "hi carol", notifier.pushes[0].n.Body)
}

func TestDispatcher_FallsBackToSenderID(t *testing.T) {
	// No sender profile registered; the title uses the raw user id.
	store := &fakeProfileStore{profiles: map[string]profile.Record{
		"carol": {UserID: "carol", DisplayName: "Carol", DeviceToken: "token-carol"},
	}}
	notifier := &recordingNotifier{}
	d := NewDispatcher(store, notifier)

	d.NotifyOffline(context.Background(), "alice", "carol", "hi")

	require.Len(t, notifier.pushes, 1)
	assert.Equal(t, "New message from alice", notifier.pushes[0].n.Title)
}

func TestDispatcher_SkipsUnknownRecipient(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]profile.Record{}}
	notifier := &recordingNotifier{}
	d := NewDispatcher(store, notifier)

	d.NotifyOffline(context.Background(), "alice", "nobody", "hi")

	assert.Empty(t, notifier.pushes)
}

func TestDispatcher_SkipsRecipientWithoutDeviceToken(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]profile.Record{
		"carol": {UserID: "carol", DisplayName: "Carol"},
	}}
	notifier := &recordingNotifier{}
	d := NewDispatcher(store, notifier)

	d.NotifyOffline(context.Background(), "alice", "carol", "hi")

	assert.Empty(t, notifier.pushes)
}

func TestDispatcher_SwallowsFailures(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]profile.Record{
		"carol": {UserID: "carol", DisplayName: "Carol", DeviceToken: "token-carol"},
	}}
	notifier := &recordingNotifier{pushErr: errors.New("gateway unavailable")}
	d := NewDispatcher(store, notifier)

	// Push failure is logged only; the call must not panic or propagate.
	d.NotifyOffline(context.Background(), "alice", "carol", "hi")

	require.Len(t, notifier.pushes, 1)
}

func TestDispatcher_SkipsOnLookupError(t *testing.T) {
	store := &fakeProfileStore{getErr: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	d := NewDispatcher(store, notifier)

	d.NotifyOffline(context.Background(), "alice", "carol", "hi")

	assert.Empty(t, notifier.pushes)
}
