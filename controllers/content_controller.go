package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisetv/wisetv/admin"
	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
	"github.com/wisetv/wisetv/utils"
)

// ContentController serves the public read API over both collections and the
// authenticated admin CRUD. Create and update run through the admin form
// controller so the HTTP layer and the console share one validation path.
type ContentController struct {
	store     store.Store
	dashboard *admin.ListController
}

// NewContentController wires the store and the shared dashboard state.
func NewContentController(st store.Store, dashboard *admin.ListController) *ContentController {
	return &ContentController{store: st, dashboard: dashboard}
}

// requestSession satisfies admin.Session for requests that already passed
// the auth middleware.
type requestSession struct{}

func (requestSession) SignedIn() bool { return true }

type postRequest struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	Content         string `json:"content"`
	Image           string `json:"image"`
	Author          string `json:"author"`
	InstagramHandle string `json:"instagramHandle"`
	FacebookHandle  string `json:"facebookHandle"`
}

type socialLinkRequest struct {
	Platform        string `json:"platform"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	Image           string `json:"image"`
	Author          string `json:"author"`
	InstagramHandle string `json:"instagramHandle"`
	FacebookHandle  string `json:"facebookHandle"`
}

// ListPosts returns all regular posts, optionally filtered by category,
// newest first. Responses are cached per category.
func (c *ContentController) ListPosts(ctx *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(ctx.Query("category")))
	cacheKey := fmt.Sprintf("cache:posts:list:cat=%s", category)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	records, err := c.store.ListAll(ctx.Request.Context(), store.CollectionPosts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	if category != "" {
		records = filterRecords(records, func(r store.Record) bool { return r.Category == category })
	}
	sortByDateDesc(records)

	payload := gin.H{"items": records}
	cacheWrapped(cacheKey, payload)
	utils.Success(ctx, payload)
}

// GetPost returns a single regular post by id.
func (c *ContentController) GetPost(ctx *gin.Context) {
	id := ctx.Param("id")
	records, err := c.store.ListAll(ctx.Request.Context(), store.CollectionPosts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}
	for i := range records {
		if records[i].ID == id {
			utils.Success(ctx, gin.H{"post": records[i]})
			return
		}
	}
	utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
}

// ListSocialLinks returns all social links, optionally filtered by platform,
// newest first.
func (c *ContentController) ListSocialLinks(ctx *gin.Context) {
	platform := strings.ToLower(strings.TrimSpace(ctx.Query("platform")))
	cacheKey := fmt.Sprintf("cache:social:list:platform=%s", platform)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	records, err := c.store.ListAll(ctx.Request.Context(), store.CollectionSocialLinks)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list social links")
		return
	}
	if platform != "" {
		records = filterRecords(records, func(r store.Record) bool { return r.Platform == platform })
	}
	sortByDateDesc(records)

	payload := gin.H{"items": records}
	cacheWrapped(cacheKey, payload)
	utils.Success(ctx, payload)
}

// Dashboard returns the admin list controller snapshot: both collections
// plus any pending notice.
func (c *ContentController) Dashboard(ctx *gin.Context) {
	if c.dashboard == nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50300, "dashboard not available")
		return
	}
	snap := c.dashboard.Snapshot()
	utils.Success(ctx, snap)
}

// CreatePost creates a regular post.
func (c *ContentController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	c.save(ctx, models.KindRegular, req.fields(), "")
}

// UpdatePost updates a regular post in place. The record's date moves to now.
func (c *ContentController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	c.save(ctx, models.KindRegular, req.fields(), ctx.Param("id"))
}

// CreateSocialLink creates a social link.
func (c *ContentController) CreateSocialLink(ctx *gin.Context) {
	var req socialLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid request payload")
		return
	}
	c.save(ctx, models.KindSocial, req.fields(), "")
}

// UpdateSocialLink updates a social link in place.
func (c *ContentController) UpdateSocialLink(ctx *gin.Context) {
	var req socialLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid request payload")
		return
	}
	c.save(ctx, models.KindSocial, req.fields(), ctx.Param("id"))
}

// DeletePost removes a regular post. Deleting an id that is already gone
// succeeds.
func (c *ContentController) DeletePost(ctx *gin.Context) {
	c.remove(ctx, store.CollectionPosts)
}

// DeleteSocialLink removes a social link.
func (c *ContentController) DeleteSocialLink(ctx *gin.Context) {
	c.remove(ctx, store.CollectionSocialLinks)
}

func (req postRequest) fields() admin.Fields {
	return admin.Fields{
		Title:           req.Title,
		Category:        req.Category,
		Content:         req.Content,
		ImageURL:        req.Image,
		Author:          req.Author,
		InstagramHandle: req.InstagramHandle,
		FacebookHandle:  req.FacebookHandle,
	}
}

func (req socialLinkRequest) fields() admin.Fields {
	return admin.Fields{
		Platform:        req.Platform,
		URL:             req.URL,
		Title:           req.Title,
		ImageURL:        req.Image,
		Author:          req.Author,
		InstagramHandle: req.InstagramHandle,
		FacebookHandle:  req.FacebookHandle,
	}
}

// save drives a per-request form controller: an update when editID is set,
// a create otherwise.
func (c *ContentController) save(ctx *gin.Context, kind models.Kind, fields admin.Fields, editID string) {
	form := admin.NewFormController(c.store, requestSession{})
	_ = form.SetKind(kind)
	if editID != "" {
		form.BeginEdit(store.Record{ID: editID}, kind)
	}
	form.SetFields(fields)

	id, err := form.Submit(ctx.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrValidation):
			utils.Error(ctx, http.StatusBadRequest, 40021, err.Error())
		case errors.Is(err, admin.ErrPermission):
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		case errors.Is(err, store.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40402, "record not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to save record")
		}
		return
	}

	c.afterMutation(ctx)
	utils.Success(ctx, gin.H{"id": id})
}

func (c *ContentController) remove(ctx *gin.Context, col store.Collection) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40027, "missing record id")
		return
	}
	if err := c.store.Delete(ctx.Request.Context(), col, id); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete record")
		return
	}
	c.afterMutation(ctx)
	utils.Success(ctx, gin.H{"message": "record deleted"})
}

// afterMutation invalidates the public list caches and refreshes the shared
// dashboard state. The refresh runs detached; a later request reads the
// updated snapshot.
func (c *ContentController) afterMutation(ctx *gin.Context) {
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:social:")
	if c.dashboard != nil {
		go func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.dashboard.Refresh(refreshCtx); err != nil && utils.Sugar != nil {
				utils.Sugar.Warnf("dashboard refresh failed: %v", err)
			}
		}()
	}
}

func cacheWrapped(key string, payload gin.H) {
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(key, wrapper, time.Hour)
}

func filterRecords(records []store.Record, keep func(store.Record) bool) []store.Record {
	out := records[:0]
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByDateDesc(records []store.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
