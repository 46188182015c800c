package admin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
)

// Notice is a transient user-facing success or error message.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Snapshot is the list controller's current display state.
type Snapshot struct {
	Posts       []store.Record `json:"posts"`
	SocialLinks []store.Record `json:"socialLinks"`
	Loading     bool           `json:"loading"`
	Notice      *Notice        `json:"notice"`
}

// ConfirmFunc asks the user to confirm a destructive action. Returning false
// aborts it.
type ConfirmFunc func(message string) bool

// ListController keeps both collections loaded for the admin screen. It
// publishes every state change to its subscribers; there are no ambient
// events. A controller that has been closed applies no further updates.
type ListController struct {
	store   store.Store
	form    *FormController
	confirm ConfirmFunc

	mu          sync.Mutex
	posts       []store.Record
	socialLinks []store.Record
	loading     bool
	notice      *Notice
	noticeTTL   time.Duration
	noticeTimer *time.Timer
	subs        map[int]func(Snapshot)
	nextSub     int
	closed      bool
}

// NewListController builds a list controller. A nil confirm treats every
// delete as confirmed (the transport already asked); noticeTTL <= 0 falls
// back to 4s.
func NewListController(st store.Store, form *FormController, confirm ConfirmFunc, noticeTTL time.Duration) *ListController {
	if noticeTTL <= 0 {
		noticeTTL = 4 * time.Second
	}
	c := &ListController{
		store:     st,
		form:      form,
		confirm:   confirm,
		noticeTTL: noticeTTL,
		subs:      map[int]func(Snapshot){},
	}
	if form != nil {
		form.Bind(c)
	}
	return c
}

// Subscribe registers an observer invoked with a snapshot after every state
// change. The returned function detaches it.
func (c *ListController) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Snapshot returns a copy of the current display state.
func (c *ListController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ListController) snapshotLocked() Snapshot {
	s := Snapshot{
		Posts:       append([]store.Record(nil), c.posts...),
		SocialLinks: append([]store.Record(nil), c.socialLinks...),
		Loading:     c.loading,
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	return s
}

// publish sends the current snapshot to all subscribers. Callers must not
// hold the mutex.
func (c *ListController) publish() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Refresh fetches both collections in parallel, sorts each newest-first, and
// replaces the display state. On any fetch error the previous lists stay in
// place so a transient failure does not blank the screen. Concurrent
// refreshes are not queued; the last one to finish wins.
func (c *ListController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()
	c.publish()

	var (
		wg          sync.WaitGroup
		posts       []store.Record
		links       []store.Record
		errP, errL  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, errP = c.store.ListAll(ctx, store.CollectionPosts)
	}()
	go func() {
		defer wg.Done()
		links, errL = c.store.ListAll(ctx, store.CollectionSocialLinks)
	}()
	wg.Wait()

	err := errP
	if err == nil {
		err = errL
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loading = false
	if err != nil {
		c.setNoticeLocked(NoticeError, "Failed to fetch posts: "+err.Error())
		c.mu.Unlock()
		c.publish()
		return err
	}
	sortByDateDesc(posts)
	sortByDateDesc(links)
	c.posts = posts
	c.socialLinks = links
	c.mu.Unlock()
	c.publish()
	return nil
}

// RequestEdit hands the record to the form controller for editing.
func (c *ListController) RequestEdit(rec store.Record, kind models.Kind) {
	if c.form != nil {
		c.form.BeginEdit(rec, kind)
	}
}

// RequestDelete removes a record after confirmation, then refreshes. A
// record that no longer exists deletes cleanly (the store treats missing ids
// as success), so stale screens cannot wedge the controller.
func (c *ListController) RequestDelete(ctx context.Context, id string, kind models.Kind) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	confirm := c.confirm
	c.mu.Unlock()

	if confirm != nil && !confirm("Are you sure you want to delete this item?") {
		return nil
	}

	if err := c.store.Delete(ctx, collectionFor(kind), id); err != nil {
		c.SetNotice(NoticeError, "Failed to delete: "+err.Error())
		return err
	}

	c.SetNotice(NoticeSuccess, "Item deleted successfully!")
	return c.Refresh(ctx)
}

// SetNotice shows a transient notice that clears itself after the TTL.
func (c *ListController) SetNotice(kind NoticeKind, message string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.setNoticeLocked(kind, message)
	c.mu.Unlock()
	c.publish()
}

func (c *ListController) setNoticeLocked(kind NoticeKind, message string) {
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.notice = &Notice{Kind: kind, Message: message, ExpiresAt: time.Now().Add(c.noticeTTL)}
	c.noticeTimer = time.AfterFunc(c.noticeTTL, c.clearNotice)
}

func (c *ListController) clearNotice() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.notice = nil
	c.mu.Unlock()
	c.publish()
}

// Notice returns the current notice, or nil.
func (c *ListController) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return nil
	}
	n := *c.notice
	return &n
}

// Close detaches the controller: pending refreshes and notice timers no
// longer apply state, and subscribers are released.
func (c *ListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.subs = map[int]func(Snapshot){}
}

func sortByDateDesc(records []store.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
