package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"relaychat/internal/app/chat"
	"relaychat/internal/app/message"
	"relaychat/internal/app/profile"
	"relaychat/internal/configs"
)

// fakeMessageStore is an in-memory message.Store for handler tests.
type fakeMessageStore struct {
	mu      sync.Mutex
	records []message.Record
}

func (s *fakeMessageStore) Append(ctx context.Context, rec message.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeMessageStore) History(ctx context.Context, userA, userB string, limit int) ([]message.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = message.DefaultHistoryLimit
	}

	var matched []message.Record
	for _, rec := range s.records {
		if (rec.Sender == userA && rec.Recipient == userB) ||
			(rec.Sender == userB && rec.Recipient == userA) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fakeProfileStore is an in-memory profile.Store.
type fakeProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]profile.Record
	upsertErr error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]profile.Record)}
}

func (s *fakeProfileStore) Get(ctx context.Context, userID string) (profile.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.profiles[userID]
	if !ok {
		return profile.Record{}, profile.ErrNotFound
	}
	return rec, nil
}

func (s *fakeProfileStore) Upsert(ctx context.Context, rec profile.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.profiles[rec.UserID] = rec
	return nil
}

// fakeArchive records transcript uploads and presigns deterministic URLs.
type fakeArchive struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	uploadErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{uploads: make(map[string][]byte)}
}

func (a *fakeArchive) UploadTranscript(ctx context.Context, key string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploadErr != nil {
		return a.uploadErr
	}
	a.uploads[key] = body
	return nil
}

func (a *fakeArchive) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.uploads[key]; !ok {
		return "", errors.New("fakeArchive: unknown key")
	}
	return fmt.Sprintf("https://storage.example.com/%s?signed=1", key), nil
}

// fakeDispatcher records offline notification dispatches.
type fakeDispatcher struct {
	calls chan [3]string
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{calls: make(chan [3]string, 8)}
}

func (d *fakeDispatcher) NotifyOffline(ctx context.Context, sender, recipient, body string) {
	d.calls <- [3]string{sender, recipient, body}
}

// testDeps bundles the fakes behind an AppDeps ready for Router.
type testDeps struct {
	deps       *AppDeps
	messages   *fakeMessageStore
	profiles   *fakeProfileStore
	archive    *fakeArchive
	dispatcher *fakeDispatcher
}

func newTestDeps() *testDeps {
	messages := &fakeMessageStore{}
	profiles := newFakeProfileStore()
	archiveSvc := newFakeArchive()
	dispatcher := newFakeDispatcher()

	hub := chat.NewHub(messages, dispatcher)

	return &testDeps{
		deps: &AppDeps{
			Hub: hub,
			Config: &configs.AppConfig{
				Environment:    "development",
				Port:           8080,
				AllowedOrigins: []string{},
			},
			Messages: messages,
			Profiles: profiles,
			Archive:  archiveSvc,
		},
		messages:   messages,
		profiles:   profiles,
		archive:    archiveSvc,
		dispatcher: dispatcher,
	}
}
