package repo

import (
	"context"
	"fmt"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/infra"
	"github.com/slemppa/storized/internal/sqlinline"
)

// ContentRepositoryPG implements domain.ContentRepository backed by PostgreSQL.
type ContentRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewContentRepository creates a new ContentRepositoryPG.
func NewContentRepository(sql infra.SQLExecutor) *ContentRepositoryPG {
	return &ContentRepositoryPG{sql: sql}
}

// ListByUser returns the user's content newest first.
func (r *ContentRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.ContentItem, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListContentByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	items := []domain.ContentItem{}
	for rows.Next() {
		var item domain.ContentItem
		var recordID, contentType, platform, userIDCol, caption, hashtags, blogURL, metaDesc, publishDate, blogPost *string
		var status string
		if err := rows.Scan(
			&item.ID,
			&recordID,
			&item.Idea,
			&contentType,
			&platform,
			&status,
			&userIDCol,
			&item.CreatedAt,
			&item.UpdatedAt,
			&caption,
			&item.MediaURLs,
			&hashtags,
			&blogURL,
			&metaDesc,
			&publishDate,
			&blogPost,
		); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		item.RecordID = deref(recordID)
		item.Type = domain.ContentType(deref(contentType))
		item.Platform = deref(platform)
		item.Status = domain.ContentStatus(status)
		item.UserID = deref(userIDCol)
		item.Caption = deref(caption)
		item.Hashtags = deref(hashtags)
		item.BlogURL = deref(blogURL)
		item.MetaDescription = deref(metaDesc)
		item.PublishDate = deref(publishDate)
		item.BlogPost = deref(blogPost)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return items, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ domain.ContentRepository = (*ContentRepositoryPG)(nil)
