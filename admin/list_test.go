package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
)

func seedRecords(st *fakeStore) {
	st.records[store.CollectionPosts] = []store.Record{
		{ID: "p-old", Payload: store.Payload{Title: "old", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "p-new", Payload: store.Payload{Title: "new", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "p-mid", Payload: store.Payload{Title: "mid", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}},
	}
	st.records[store.CollectionSocialLinks] = []store.Record{
		{ID: "s-old", Payload: store.Payload{URL: "u1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "s-new", Payload: store.Payload{URL: "u2", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}},
	}
}

func TestListRefresh_SortsNewestFirst(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	require.NoError(t, list.Refresh(context.Background()))

	snap := list.Snapshot()
	assert.False(t, snap.Loading)
	require.Len(t, snap.Posts, 3)
	assert.Equal(t, "p-new", snap.Posts[0].ID)
	assert.Equal(t, "p-mid", snap.Posts[1].ID)
	assert.Equal(t, "p-old", snap.Posts[2].ID)
	require.Len(t, snap.SocialLinks, 2)
	assert.Equal(t, "s-new", snap.SocialLinks[0].ID)
}

func TestListRefresh_ErrorKeepsStaleLists(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	require.NoError(t, list.Refresh(context.Background()))

	st.listErr = errors.New("backend down")
	err := list.Refresh(context.Background())
	require.Error(t, err)

	snap := list.Snapshot()
	assert.Len(t, snap.Posts, 3, "stale lists stay in place on fetch error")
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, NoticeError, snap.Notice.Kind)
	assert.Contains(t, snap.Notice.Message, "Failed to fetch posts")
}

func TestListNoticeExpires(t *testing.T) {
	st := newFakeStore()
	list := NewListController(st, nil, nil, 20*time.Millisecond)
	defer list.Close()

	list.SetNotice(NoticeSuccess, "done")
	require.NotNil(t, list.Notice())

	assert.Eventually(t, func() bool {
		return list.Notice() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestListNoticeReplacedResetsTimer(t *testing.T) {
	st := newFakeStore()
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	list.SetNotice(NoticeError, "first")
	list.SetNotice(NoticeSuccess, "second")

	n := list.Notice()
	require.NotNil(t, n)
	assert.Equal(t, "second", n.Message)
	assert.Equal(t, NoticeSuccess, n.Kind)
}

func TestListRequestDelete_Success(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()
	require.NoError(t, list.Refresh(context.Background()))

	require.NoError(t, list.RequestDelete(context.Background(), "p-mid", models.KindRegular))

	assert.Equal(t, 1, st.deleteCalls)
	snap := list.Snapshot()
	assert.Len(t, snap.Posts, 2)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, "Item deleted successfully!", snap.Notice.Message)
}

func TestListRequestDelete_MissingIDStillSucceeds(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	err := list.RequestDelete(context.Background(), "never-existed", models.KindRegular)
	assert.NoError(t, err)
	assert.Equal(t, 1, st.deleteCalls)
}

func TestListRequestDelete_ConfirmDeclined(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, func(string) bool { return false }, time.Minute)
	defer list.Close()

	require.NoError(t, list.RequestDelete(context.Background(), "p-old", models.KindRegular))
	assert.Equal(t, 0, st.deleteCalls)
	assert.Nil(t, list.Notice())
}

func TestListRequestDelete_StoreError(t *testing.T) {
	st := newFakeStore()
	st.deleteErr = errors.New("locked")
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	err := list.RequestDelete(context.Background(), "p-1", models.KindSocial)
	require.Error(t, err)
	n := list.Notice()
	require.NotNil(t, n)
	assert.Equal(t, NoticeError, n.Kind)
	assert.Contains(t, n.Message, "Failed to delete")
}

func TestListSubscribePublishesSnapshots(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)
	defer list.Close()

	var snaps []Snapshot
	cancel := list.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	require.NoError(t, list.Refresh(context.Background()))

	// Loading-on, then the loaded state.
	require.GreaterOrEqual(t, len(snaps), 2)
	assert.True(t, snaps[0].Loading)
	last := snaps[len(snaps)-1]
	assert.False(t, last.Loading)
	assert.Len(t, last.Posts, 3)

	cancel()
	before := len(snaps)
	list.SetNotice(NoticeSuccess, "after cancel")
	assert.Equal(t, before, len(snaps))
}

func TestListClosedAppliesNothing(t *testing.T) {
	st := newFakeStore()
	seedRecords(st)
	list := NewListController(st, nil, nil, time.Minute)

	called := false
	list.Subscribe(func(Snapshot) { called = true })
	list.Close()

	assert.NoError(t, list.Refresh(context.Background()))
	list.SetNotice(NoticeError, "ignored")

	assert.False(t, called)
	assert.Nil(t, list.Notice())
	assert.Empty(t, list.Snapshot().Posts)
}

func TestListFormBinding_SavedTriggersRefresh(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)
	list := NewListController(st, form, nil, time.Minute)
	defer list.Close()

	form.SetFields(Fields{Title: "t", Category: "news", Content: "c"})
	_, err := form.Submit(context.Background())
	require.NoError(t, err)

	snap := list.Snapshot()
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "t", snap.Posts[0].Title)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, NoticeSuccess, snap.Notice.Kind)
}

func TestListRequestEditHandsOffToForm(t *testing.T) {
	st := newFakeStore()
	form := newTestForm(st)
	list := NewListController(st, form, nil, time.Minute)
	defer list.Close()

	rec := store.Record{ID: "s-9", Payload: store.Payload{URL: "https://facebook.com/wisetv/posts/9", Platform: "facebook", Title: "fb"}}
	list.RequestEdit(rec, models.KindSocial)

	require.NotNil(t, form.Editing())
	assert.Equal(t, "s-9", form.Editing().ID)
	assert.Equal(t, models.KindSocial, form.Kind())
	assert.Equal(t, "https://facebook.com/wisetv/posts/9", form.Fields().URL)
}
