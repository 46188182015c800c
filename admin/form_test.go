package admin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
)

// fakeStore is an in-memory store.Store with call counters, shared by the
// form and list controller tests.
type fakeStore struct {
	mu      sync.Mutex
	records map[store.Collection][]store.Record
	nextID  int

	createCalls int
	updateCalls int
	deleteCalls int
	listCalls   int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	lastCollection store.Collection
	lastPayload    store.Payload
	lastUpdateID   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[store.Collection][]store.Record{}}
}

func (s *fakeStore) ListAll(ctx context.Context, collection store.Collection) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]store.Record(nil), s.records[collection]...), nil
}

func (s *fakeStore) Create(ctx context.Context, collection store.Collection, payload store.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.lastCollection = collection
	s.lastPayload = payload
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	id := "rec-" + string(rune('0'+s.nextID))
	s.records[collection] = append(s.records[collection], store.Record{ID: id, Payload: payload})
	return id, nil
}

func (s *fakeStore) Update(ctx context.Context, collection store.Collection, id string, payload store.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	s.lastCollection = collection
	s.lastUpdateID = id
	s.lastPayload = payload
	if s.updateErr != nil {
		return s.updateErr
	}
	for i, rec := range s.records[collection] {
		if rec.ID == id {
			s.records[collection][i].Payload = payload
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeStore) Delete(ctx context.Context, collection store.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.records[collection][:0]
	for _, rec := range s.records[collection] {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	s.records[collection] = kept
	return nil
}

type fakeSession struct{ signedIn bool }

func (s fakeSession) SignedIn() bool { return s.signedIn }

func newTestForm(st *fakeStore) *FormController {
	return NewFormController(st, fakeSession{signedIn: true})
}

func TestFormSubmit_CreateRegularPost(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.SetFields(Fields{
		Title:    "  Breaking News  ",
		Category: "NEWS",
		Content:  "Something happened.",
	})

	id, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, st.createCalls)
	assert.Equal(t, 0, st.updateCalls)
	assert.Equal(t, store.CollectionPosts, st.lastCollection)

	assert.Equal(t, "Breaking News", st.lastPayload.Title)
	assert.Equal(t, "news", st.lastPayload.Category)
	require.NotNil(t, st.lastPayload.Author)
	assert.Equal(t, models.DefaultAuthor, *st.lastPayload.Author)
	assert.False(t, st.lastPayload.Date.IsZero())

	// Form resets after a successful save.
	assert.Equal(t, Fields{}, form.Fields())
	assert.Equal(t, models.KindRegular, form.Kind())
	assert.Nil(t, form.Editing())
}

func TestFormSubmit_RegularMissingFields(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.SetFields(Fields{Title: "No body"})

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, st.createCalls)
	assert.Equal(t, 0, st.updateCalls)

	// Draft survives the failure for a retry.
	assert.Equal(t, "No body", form.Fields().Title)
}

func TestFormSubmit_RegularInvalidCategory(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.SetFields(Fields{Title: "t", Category: "gossip", Content: "c"})

	_, err := form.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, st.createCalls)
}

func TestFormSubmit_SocialDefaults(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)
	fixed := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	form.now = func() time.Time { return fixed }

	require.NoError(t, form.SetKind(models.KindSocial))
	form.SetFields(Fields{URL: "https://instagram.com/p/abc"})

	_, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.CollectionSocialLinks, st.lastCollection)
	assert.Equal(t, models.DefaultPlatform, st.lastPayload.Platform)
	assert.Equal(t, "Social Post Mar 15, 2025 9:30:00 AM", st.lastPayload.Title)
	assert.Equal(t, models.CategorySocial, st.lastPayload.Category)
	assert.Equal(t, fixed, st.lastPayload.Date)
}

func TestFormSubmit_SocialMissingURL(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	require.NoError(t, form.SetKind(models.KindSocial))
	form.SetFields(Fields{Platform: "youtube"})

	_, err := form.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, st.createCalls)
	assert.Equal(t, 0, st.updateCalls)
}

func TestFormSubmit_SocialInvalidPlatform(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	require.NoError(t, form.SetKind(models.KindSocial))
	form.SetFields(Fields{URL: "https://example.com", Platform: "myspace"})

	_, err := form.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFormSubmit_UpdateTargetsEditedRecord(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)
	form.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	author := "Dana"
	rec := store.Record{ID: "post-1", Payload: store.Payload{
		Title:    "Old title",
		Category: "news",
		Content:  "old content",
		Author:   &author,
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	st.records[store.CollectionPosts] = []store.Record{rec}

	form.BeginEdit(rec, models.KindRegular)
	assert.Equal(t, "Old title", form.Fields().Title)
	assert.Equal(t, "Dana", form.Fields().Author)

	fields := form.Fields()
	fields.Title = "New title"
	form.SetFields(fields)

	id, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "post-1", id)
	assert.Equal(t, 0, st.createCalls)
	assert.Equal(t, 1, st.updateCalls)
	assert.Equal(t, "post-1", st.lastUpdateID)
	assert.Equal(t, "New title", st.lastPayload.Title)

	// Date restamps to the submission time on edit.
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), st.lastPayload.Date)
	assert.Nil(t, form.Editing())
}

func TestFormKindLockedWhileEditing(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.BeginEdit(store.Record{ID: "x"}, models.KindRegular)
	err := form.SetKind(models.KindSocial)
	assert.True(t, errors.Is(err, ErrKindLocked))

	form.CancelEdit()
	assert.NoError(t, form.SetKind(models.KindSocial))
}

func TestFormCancelEditResets(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.BeginEdit(store.Record{ID: "s1", Payload: store.Payload{URL: "https://youtube.com/watch?v=1", Platform: "youtube"}}, models.KindSocial)
	assert.Equal(t, models.KindSocial, form.Kind())

	form.CancelEdit()
	assert.Nil(t, form.Editing())
	assert.Equal(t, models.KindRegular, form.Kind())
	assert.Equal(t, Fields{}, form.Fields())
}

func TestFormSubmit_NotSignedIn(t *testing.T) {
	st := newFakeStore()
	form := NewFormController(st, fakeSession{signedIn: false})

	form.SetFields(Fields{Title: "t", Category: "news", Content: "c"})

	_, err := form.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrPermission))
	assert.Equal(t, 0, st.createCalls)
}

func TestFormSubmit_DuplicateWhileInFlight(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)
	form.SetFields(Fields{Title: "t", Category: "news", Content: "c"})

	form.mu.Lock()
	form.submitting = true
	form.mu.Unlock()

	id, err := form.Submit(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, st.createCalls)

	form.mu.Lock()
	form.submitting = false
	form.mu.Unlock()

	id, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, st.createCalls)
}

func TestFormSubmit_StoreErrorKeepsState(t *testing.T) {
	st := newFakeStore()
	st.createErr = errors.New("connection refused")
	form := newTestForm(st)

	var notices []string
	form.SetHooks(func(kind NoticeKind, msg string) {
		if kind == NoticeError {
			notices = append(notices, msg)
		}
	}, nil)

	form.SetFields(Fields{Title: "t", Category: "news", Content: "c"})

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Len(t, notices, 1)
	assert.Equal(t, "t", form.Fields().Title)
}

func TestFormSubmit_SuccessNoticeAndSavedHook(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	var gotKind NoticeKind
	var gotMsg string
	savedCalls := 0
	form.SetHooks(func(kind NoticeKind, msg string) {
		gotKind, gotMsg = kind, msg
	}, func() { savedCalls++ })

	form.SetFields(Fields{Title: "t", Category: "news", Content: "c"})
	_, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoticeSuccess, gotKind)
	assert.Equal(t, "Post created successfully!", gotMsg)
	assert.Equal(t, 1, savedCalls)
}

func TestFormSanitizesMarkup(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)

	form.SetFields(Fields{
		Title:    `hello<script>alert(1)</script>`,
		Category: "news",
		Content:  `<p>fine</p><script>bad()</script>`,
	})

	_, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, st.lastPayload.Title, "<script>")
	assert.NotContains(t, st.lastPayload.Content, "<script>")
}
