package finance

import (
	"context"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/notion"
)

// LastTransaction summarizes the most recent transaction of an account.
type LastTransaction struct {
	Amount float64                `json:"amount"`
	Type   notion.TransactionType `json:"type"`
}

// AccountBalance is the per-account output of the balance aggregation.
type AccountBalance struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Balance         float64          `json:"balance"`
	LastTransaction *LastTransaction `json:"lastTransaction"`
}

// BalanceReport is the response of the balance aggregation.
type BalanceReport struct {
	Accounts []AccountBalance `json:"accounts"`
	Message  string           `json:"message,omitempty"`
}

// AccountBalances reads every account's balance property and finds its
// most recent transaction. Accounts are processed concurrently; a failure
// in one account degrades that entry to balance 0 without lastTransaction
// instead of failing the whole report. Output keeps the listing order.
func (s *Service) AccountBalances(ctx context.Context) (*BalanceReport, error) {
	if s.dbs.Accounts == "" {
		return &BalanceReport{
			Accounts: []AccountBalance{},
			Message:  "accounts database not configured",
		}, nil
	}

	accountProps, err := s.schemas.AccountProperties(ctx, s.dbs.Accounts)
	if err != nil {
		return nil, translateNotionErr("Accounts", err)
	}
	txProps, err := s.schemas.TransactionProperties(ctx, s.dbs.Transactions)
	if err != nil {
		return nil, translateNotionErr("Transactions", err)
	}

	res, err := notion.QueryWithSort(ctx, s.api, s.dbs.Accounts, notion.QueryOptions{
		SortProperty: accountProps.Title,
		Direction:    notionapi.SortOrderASC,
	})
	if err != nil {
		return nil, translateNotionErr("Accounts", err)
	}

	balances := make([]AccountBalance, len(res.Pages))

	var g errgroup.Group
	for i, page := range res.Pages {
		i, page := i, page
		g.Go(func() error {
			balances[i] = s.accountBalance(ctx, page, accountProps, txProps)
			// Branches always succeed: per-account errors were already
			// degraded, and returning one here would cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()

	return &BalanceReport{Accounts: balances}, nil
}

func (s *Service) accountBalance(ctx context.Context, page notionapi.Page, accountProps notion.AccountProperties, txProps notion.TransactionProperties) AccountBalance {
	name := notion.Title(page, accountProps.Title)
	if name == "" {
		name = "Unnamed Account"
	}

	account := AccountBalance{
		ID:      string(page.ID),
		Name:    name,
		Balance: notion.Balance(page, accountProps.Balance),
	}

	last, err := s.lastTransaction(ctx, account.ID, txProps)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("account_id", account.ID).
			Msg("Failed to fetch last transaction for account")
		return account
	}
	account.LastTransaction = last

	return account
}

// lastTransaction scans the 100 most recently dated transactions for the
// first one linked to the account.
func (s *Service) lastTransaction(ctx context.Context, accountID string, props notion.TransactionProperties) (*LastTransaction, error) {
	res, err := notion.QueryWithSort(ctx, s.api, s.dbs.Transactions, notion.QueryOptions{
		SortProperty: props.Date,
		Direction:    notionapi.SortOrderDESC,
		PageSize:     notion.FallbackPageSize,
	})
	if err != nil {
		return nil, err
	}

	for _, page := range res.Pages {
		if !notion.RelationContains(page, props.Account, accountID) {
			continue
		}
		return &LastTransaction{
			Amount: notion.Number(page, props.Amount),
			Type:   notion.ClassifyType(page, props.Type),
		}, nil
	}

	return nil, nil
}
