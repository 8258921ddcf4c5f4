package finance

import (
	"context"
	"sort"

	"github.com/jomei/notionapi"

	"fintrack/internal/notion"
)

// Category mirrors a record in the categories database.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	props, err := s.schemas.CategoryProperties(ctx, s.dbs.Categories)
	if err != nil {
		return nil, translateNotionErr("Categories", err)
	}

	res, err := notion.QueryWithSort(ctx, s.api, s.dbs.Categories, notion.QueryOptions{
		SortProperty: props.Title,
		Direction:    notionapi.SortOrderASC,
	})
	if err != nil {
		return nil, translateNotionErr("Categories", err)
	}

	categories := make([]Category, 0, len(res.Pages))
	for _, page := range res.Pages {
		name := notion.Title(page, props.Title)
		if name == "" {
			name = "Unnamed Category"
		}
		categories = append(categories, Category{ID: string(page.ID), Name: name})
	}

	// The sort request may have been rejected; order by name regardless.
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return categories, nil
}
