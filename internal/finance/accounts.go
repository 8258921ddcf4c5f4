package finance

import (
	"context"
	"sort"

	"github.com/jomei/notionapi"

	"fintrack/internal/notion"
)

// Account mirrors a record in the accounts database.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListAccounts returns all accounts sorted by name.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	props, err := s.schemas.AccountProperties(ctx, s.dbs.Accounts)
	if err != nil {
		return nil, translateNotionErr("Accounts", err)
	}

	res, err := notion.QueryWithSort(ctx, s.api, s.dbs.Accounts, notion.QueryOptions{
		SortProperty: props.Title,
		Direction:    notionapi.SortOrderASC,
	})
	if err != nil {
		return nil, translateNotionErr("Accounts", err)
	}

	accounts := make([]Account, 0, len(res.Pages))
	for _, page := range res.Pages {
		name := notion.Title(page, props.Title)
		if name == "" {
			name = "Unnamed Account"
		}
		accounts = append(accounts, Account{ID: string(page.ID), Name: name})
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	return accounts, nil
}
