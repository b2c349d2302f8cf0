package domain

import (
	"strings"
	"time"
)

// ContentType enumerates generated content formats.
type ContentType string

const (
	ContentTypePhoto      ContentType = "Photo"
	ContentTypeCarousel   ContentType = "Carousel"
	ContentTypeReels      ContentType = "Reels"
	ContentTypeBlog       ContentType = "Blog"
	ContentTypeNewsletter ContentType = "Newsletter"
	ContentTypeLinkedIn   ContentType = "LinkedIn"
)

// ContentStatus enumerates the workflow states of a content item.
type ContentStatus string

const (
	ContentStatusDraft       ContentStatus = "Draft"
	ContentStatusInProgress  ContentStatus = "In Progress"
	ContentStatusUnderReview ContentStatus = "Under Review"
	ContentStatusScheduled   ContentStatus = "Scheduled"
	ContentStatusDone        ContentStatus = "Done"
	ContentStatusDeleted     ContentStatus = "Deleted"
	ContentStatusPublished   ContentStatus = "Published"
)

// UnknownPlatform is shown for items without a platform value.
const UnknownPlatform = "Tuntematon"

// ContentItem is a row of the content table. Nullable text columns decode to
// the empty string.
type ContentItem struct {
	ID              string        `json:"id"`
	RecordID        string        `json:"record_id"`
	Idea            string        `json:"idea"`
	Type            ContentType   `json:"type"`
	Platform        string        `json:"platform"`
	Status          ContentStatus `json:"status"`
	UserID          string        `json:"user_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Caption         string        `json:"caption"`
	MediaURLs       []string      `json:"media_urls"`
	Hashtags        string        `json:"hashtags"`
	BlogURL         string        `json:"blog_url"`
	MetaDescription string        `json:"meta_description"`
	PublishDate     string        `json:"publish_date"`
	BlogPost        string        `json:"blog_post"`
}

// PlatformLabel returns the platform for display.
func (c ContentItem) PlatformLabel() string {
	if c.Platform == "" {
		return UnknownPlatform
	}
	return c.Platform
}

// StatusClass is the CSS modifier for the status badge: lower case with the
// first space replaced by a dash ("In Progress" -> "in-progress").
func (c ContentItem) StatusClass() string {
	return strings.Replace(strings.ToLower(string(c.Status)), " ", "-", 1)
}

// HashtagList splits the space separated hashtag column.
func (c ContentItem) HashtagList() []string {
	if c.Hashtags == "" {
		return nil
	}
	return strings.Split(c.Hashtags, " ")
}
