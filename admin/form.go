package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
	"github.com/wisetv/wisetv/utils"
)

// Fields holds the draft values of the admin form. Which fields matter
// depends on the kind being composed; shared fields (author, image, handles)
// apply to both.
type Fields struct {
	Title           string
	Category        string
	Content         string
	URL             string
	Platform        string
	Author          string
	ImageURL        string
	InstagramHandle string
	FacebookHandle  string
}

// EditTarget identifies the record currently being edited.
type EditTarget struct {
	ID   string
	Kind models.Kind
}

// FormController is the state machine behind the create/edit form. A fresh
// controller composes a new regular post; BeginEdit re-targets it at an
// existing record and locks the kind until the edit completes or is
// cancelled.
type FormController struct {
	store   store.Store
	session Session

	mu         sync.Mutex
	kind       models.Kind
	fields     Fields
	editing    *EditTarget
	submitting bool

	notify func(NoticeKind, string)
	saved  func()
	now    func() time.Time
}

// NewFormController builds a form controller over the given store and
// session. Hooks for notices and the post-save refetch signal are attached
// with SetHooks or Bind.
func NewFormController(st store.Store, session Session) *FormController {
	return &FormController{
		store:   st,
		session: session,
		kind:    models.KindRegular,
		now:     time.Now,
	}
}

// SetHooks attaches the notice sink and the saved signal. Either may be nil.
func (f *FormController) SetHooks(notify func(NoticeKind, string), saved func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notify = notify
	f.saved = saved
}

// Bind routes this form's notices and refetch signal to a list controller.
func (f *FormController) Bind(list *ListController) {
	f.SetHooks(list.SetNotice, func() {
		_ = list.Refresh(context.Background())
	})
}

// Kind returns the kind currently being composed.
func (f *FormController) Kind() models.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kind
}

// Fields returns a copy of the current draft values.
func (f *FormController) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Editing returns a copy of the current editing target, or nil when the form
// is composing a new record.
func (f *FormController) Editing() *EditTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing == nil {
		return nil
	}
	t := *f.editing
	return &t
}

// SetFields replaces the draft values wholesale.
func (f *FormController) SetFields(fields Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
}

// SetKind switches between composing a regular post and a social link. The
// kind is locked while editing. Shared fields survive the switch.
func (f *FormController) SetKind(k models.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing != nil {
		return ErrKindLocked
	}
	f.kind = k
	return nil
}

// BeginEdit targets the form at an existing record and hydrates every field
// from it. Kind-specific fields of the other kind reset to their defaults.
func (f *FormController) BeginEdit(rec store.Record, kind models.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.editing = &EditTarget{ID: rec.ID, Kind: kind}
	f.kind = kind
	f.fields = Fields{
		Title:           rec.Title,
		Author:          deref(rec.Author),
		ImageURL:        deref(rec.Image),
		InstagramHandle: deref(rec.InstagramHandle),
		FacebookHandle:  deref(rec.FacebookHandle),
	}
	if kind == models.KindRegular {
		f.fields.Category = rec.Category
		f.fields.Content = rec.Content
	} else {
		f.fields.Platform = rec.Platform
		if f.fields.Platform == "" {
			f.fields.Platform = models.DefaultPlatform
		}
		f.fields.URL = rec.URL
	}
}

// CancelEdit clears the editing target and resets all fields to defaults.
// Permitted at any time.
func (f *FormController) CancelEdit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *FormController) resetLocked() {
	f.editing = nil
	f.kind = models.KindRegular
	f.fields = Fields{}
}

// Submit validates the draft and saves it: an update when a record is being
// edited, a create otherwise. On success the form resets and the saved
// signal fires; on failure the draft and editing target are kept so the user
// can retry without re-filling. A Submit that arrives while another is in
// flight is a no-op.
func (f *FormController) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return "", nil
	}
	f.submitting = true
	kind := f.kind
	fields := f.fields
	var editing *EditTarget
	if f.editing != nil {
		t := *f.editing
		editing = &t
	}
	notify := f.notify
	saved := f.saved
	f.mu.Unlock()

	id, err := f.submit(ctx, kind, fields, editing)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.resetLocked()
	}
	f.mu.Unlock()

	if err != nil {
		if notify != nil {
			notify(NoticeError, err.Error())
		}
		return "", err
	}

	if notify != nil {
		if editing != nil {
			notify(NoticeSuccess, "Post updated successfully!")
		} else {
			notify(NoticeSuccess, "Post created successfully!")
		}
	}
	if saved != nil {
		saved()
	}
	return id, nil
}

func (f *FormController) submit(ctx context.Context, kind models.Kind, fields Fields, editing *EditTarget) (string, error) {
	if f.session == nil || !f.session.SignedIn() {
		return "", ErrPermission
	}

	if editing != nil {
		kind = editing.Kind
	}
	payload, err := f.buildPayload(kind, fields)
	if err != nil {
		return "", err
	}

	if editing != nil {
		if err := f.store.Update(ctx, collectionFor(editing.Kind), editing.ID, payload); err != nil {
			return "", err
		}
		return editing.ID, nil
	}
	return f.store.Create(ctx, collectionFor(kind), payload)
}

// buildPayload turns the draft into the flat record payload, applying the
// per-kind validation rules and defaults. Date is stamped with the submission
// time on every save, edits included.
func (f *FormController) buildPayload(kind models.Kind, fields Fields) (store.Payload, error) {
	now := f.now()

	switch kind {
	case models.KindRegular:
		title := utils.Sanitize(strings.TrimSpace(fields.Title))
		category := strings.ToLower(strings.TrimSpace(fields.Category))
		content := utils.Sanitize(fields.Content)
		if title == "" || category == "" || content == "" {
			return store.Payload{}, fmt.Errorf("%w: title, category, and content are required", ErrValidation)
		}
		if !models.ValidCategory(category) {
			return store.Payload{}, fmt.Errorf("%w: invalid category %q", ErrValidation, category)
		}
		author := strings.TrimSpace(fields.Author)
		if author == "" {
			author = models.DefaultAuthor
		}
		return store.Payload{
			Title:           title,
			Category:        category,
			Content:         content,
			Image:           nilIfEmpty(fields.ImageURL),
			Author:          &author,
			InstagramHandle: nilIfEmpty(fields.InstagramHandle),
			FacebookHandle:  nilIfEmpty(fields.FacebookHandle),
			Date:            now,
		}, nil

	case models.KindSocial:
		url := strings.TrimSpace(fields.URL)
		if url == "" {
			return store.Payload{}, fmt.Errorf("%w: url is required for social posts", ErrValidation)
		}
		platform := fields.Platform
		if platform == "" {
			platform = models.DefaultPlatform
		}
		if !models.ValidPlatform(platform) {
			return store.Payload{}, fmt.Errorf("%w: invalid platform %q", ErrValidation, platform)
		}
		title := strings.TrimSpace(fields.Title)
		if title == "" {
			title = "Social Post " + now.Format("Jan 2, 2006 3:04:05 PM")
		}
		return store.Payload{
			Platform:        platform,
			URL:             url,
			Title:           title,
			Image:           nilIfEmpty(fields.ImageURL),
			Author:          nilIfEmpty(strings.TrimSpace(fields.Author)),
			InstagramHandle: nilIfEmpty(fields.InstagramHandle),
			FacebookHandle:  nilIfEmpty(fields.FacebookHandle),
			Category:        models.CategorySocial,
			Date:            now,
		}, nil

	default:
		return store.Payload{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
}
