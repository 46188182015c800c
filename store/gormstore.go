package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wisetv/wisetv/models"
)

// GormStore implements Store on top of the MySQL schema: the "posts"
// collection maps to the posts table, "socialLinks" to social_links.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListAll returns every record in the collection.
func (s *GormStore) ListAll(ctx context.Context, c Collection) ([]Record, error) {
	switch c {
	case CollectionPosts:
		var posts []models.Post
		if err := s.db.WithContext(ctx).Find(&posts).Error; err != nil {
			return nil, fmt.Errorf("store: list %s: %w", c, err)
		}
		records := make([]Record, 0, len(posts))
		for i := range posts {
			records = append(records, postRecord(&posts[i]))
		}
		return records, nil
	case CollectionSocialLinks:
		var links []models.SocialLink
		if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
			return nil, fmt.Errorf("store: list %s: %w", c, err)
		}
		records := make([]Record, 0, len(links))
		for i := range links {
			records = append(records, linkRecord(&links[i]))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("store: %w: %q", ErrUnknownCollection, c)
	}
}

// Create inserts the payload as a new record with a fresh uuid.
func (s *GormStore) Create(ctx context.Context, c Collection, p Payload) (string, error) {
	id := uuid.NewString()
	var err error
	switch c {
	case CollectionPosts:
		post := postModel(id, p)
		err = s.db.WithContext(ctx).Create(&post).Error
	case CollectionSocialLinks:
		link := linkModel(id, p)
		err = s.db.WithContext(ctx).Create(&link).Error
	default:
		return "", fmt.Errorf("store: %w: %q", ErrUnknownCollection, c)
	}
	if err != nil {
		return "", fmt.Errorf("store: create in %s: %w", c, err)
	}
	return id, nil
}

// Update overwrites an existing record in place.
func (s *GormStore) Update(ctx context.Context, c Collection, id string, p Payload) error {
	var res *gorm.DB
	switch c {
	case CollectionPosts:
		post := postModel(id, p)
		res = s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
			Select("Title", "Category", "Content", "Image", "Author", "InstagramHandle", "FacebookHandle", "Date").
			Updates(&post)
	case CollectionSocialLinks:
		link := linkModel(id, p)
		res = s.db.WithContext(ctx).Model(&models.SocialLink{}).Where("id = ?", id).
			Select("Platform", "URL", "Title", "Image", "Author", "InstagramHandle", "FacebookHandle", "Category", "Date").
			Updates(&link)
	default:
		return fmt.Errorf("store: %w: %q", ErrUnknownCollection, c)
	}
	if res.Error != nil {
		return fmt.Errorf("store: update %s/%s: %w", c, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: update %s/%s: %w", c, id, ErrNotFound)
	}
	return nil
}

// Delete removes a record. A missing id is treated as success so repeated
// deletes are idempotent.
func (s *GormStore) Delete(ctx context.Context, c Collection, id string) error {
	var err error
	switch c {
	case CollectionPosts:
		err = s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{}).Error
	case CollectionSocialLinks:
		err = s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SocialLink{}).Error
	default:
		return fmt.Errorf("store: %w: %q", ErrUnknownCollection, c)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("store: delete %s/%s: %w", c, id, err)
	}
	return nil
}

func postModel(id string, p Payload) models.Post {
	author := models.DefaultAuthor
	if p.Author != nil && *p.Author != "" {
		author = *p.Author
	}
	return models.Post{
		ID:              id,
		Title:           p.Title,
		Category:        p.Category,
		Content:         p.Content,
		Image:           p.Image,
		Author:          author,
		InstagramHandle: p.InstagramHandle,
		FacebookHandle:  p.FacebookHandle,
		Date:            p.Date,
	}
}

func linkModel(id string, p Payload) models.SocialLink {
	category := p.Category
	if category == "" {
		category = models.CategorySocial
	}
	return models.SocialLink{
		ID:              id,
		Platform:        p.Platform,
		URL:             p.URL,
		Title:           p.Title,
		Image:           p.Image,
		Author:          p.Author,
		InstagramHandle: p.InstagramHandle,
		FacebookHandle:  p.FacebookHandle,
		Category:        category,
		Date:            p.Date,
	}
}

func postRecord(m *models.Post) Record {
	author := m.Author
	return Record{
		ID: m.ID,
		Payload: Payload{
			Title:           m.Title,
			Category:        m.Category,
			Content:         m.Content,
			Image:           m.Image,
			Author:          &author,
			InstagramHandle: m.InstagramHandle,
			FacebookHandle:  m.FacebookHandle,
			Date:            m.Date,
		},
	}
}

func linkRecord(m *models.SocialLink) Record {
	return Record{
		ID: m.ID,
		Payload: Payload{
			Platform:        m.Platform,
			URL:             m.URL,
			Title:           m.Title,
			Image:           m.Image,
			Author:          m.Author,
			InstagramHandle: m.InstagramHandle,
			FacebookHandle:  m.FacebookHandle,
			Category:        m.Category,
			Date:            m.Date,
		},
	}
}
