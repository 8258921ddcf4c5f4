package finance

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"fintrack/internal/notion"
)

const (
	// DefaultRecentLimit applies when a caller asks for recent
	// transactions without an explicit limit.
	DefaultRecentLimit = 5
	// MaxRecentLimit caps a recent-transactions listing at one response
	// page.
	MaxRecentLimit = 100
)

// TransactionInput is an inbound transaction creation request.
type TransactionInput struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	Account  string  `json:"account"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

// CreateResult reports a successful transaction creation.
type CreateResult struct {
	Success bool   `json:"success"`
	PageID  string `json:"pageId"`
	Message string `json:"message"`
}

// Transaction is the listing shape of a transaction record.
type Transaction struct {
	Name   string                 `json:"name"`
	Amount float64                `json:"amount"`
	Type   notion.TransactionType `json:"type"`
	Date   *string                `json:"date"`

	// sortKey orders fallback listings client-side; never marshalled.
	sortKey int64
}

// CreateTransaction validates the input, resolves its free-text type
// against the schema's select options and creates the record in Notion.
func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (*CreateResult, error) {
	if err := validateTransaction(in); err != nil {
		return nil, err
	}

	db, err := s.schemas.Get(ctx, s.dbs.Transactions)
	if err != nil {
		return nil, translateNotionErr("Transactions", err)
	}
	props, err := s.schemas.TransactionProperties(ctx, s.dbs.Transactions)
	if err != nil {
		return nil, translateNotionErr("Transactions", err)
	}

	typeConfig := db.Properties[props.Type]
	typeOption := notion.MatchSelectOption(typeConfig, strings.TrimSpace(in.Type))
	if typeOption == "" {
		return nil, &InvalidTypeError{
			Input:   in.Type,
			Options: notion.SelectOptionNames(typeConfig),
		}
	}

	page, err := s.api.CreatePage(ctx, s.dbs.Transactions, buildTransactionProperties(props, in, typeOption))
	if err != nil {
		if isObjectNotFound(err) {
			return nil, &NotFoundError{Resource: "transaction database or relation target"}
		}
		return nil, err
	}

	s.log.Info().
		Str("page_id", string(page.ID)).
		Str("type", typeOption).
		Msg("Created transaction")

	return &CreateResult{
		Success: true,
		PageID:  string(page.ID),
		Message: "Transaction created successfully",
	}, nil
}

// validateTransaction collects every violated constraint before failing.
// A non-positive amount and an unparsable date both count as missing. The
// category is required only for transactions explicitly typed as expense:
// income never needs one, and unrecognized types leave it optional.
func validateTransaction(in TransactionInput) error {
	var missing []string

	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(in.Type) == "" {
		missing = append(missing, "type")
	}
	if date := strings.TrimSpace(in.Date); date == "" {
		missing = append(missing, "date")
	} else if _, err := parseDate(date); err != nil {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Account) == "" {
		missing = append(missing, "account")
	}
	if strings.Contains(strings.ToLower(in.Type), "expense") && strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, date)
}

func buildTransactionProperties(props notion.TransactionProperties, in TransactionInput, typeOption string) notionapi.Properties {
	date, _ := parseDate(strings.TrimSpace(in.Date))
	start := notionapi.Date(date)

	pageProps := notionapi.Properties{
		props.Title: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: strings.TrimSpace(in.Name)},
				},
			},
		},
		props.Amount: notionapi.NumberProperty{
			Number: in.Amount,
		},
		props.Type: notionapi.SelectProperty{
			Select: notionapi.Option{Name: typeOption},
		},
		props.Date: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &start},
		},
		props.Account: notionapi.RelationProperty{
			Relation: []notionapi.Relation{{ID: notionapi.PageID(strings.TrimSpace(in.Account))}},
		},
	}

	if category := strings.TrimSpace(in.Category); category != "" {
		pageProps[props.Category] = notionapi.RelationProperty{
			Relation: []notionapi.Relation{{ID: notionapi.PageID(category)}},
		}
	}

	if note := strings.TrimSpace(in.Note); note != "" {
		pageProps[props.Note] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: note},
				},
			},
		}
	}

	return pageProps
}

// RecentTransactions lists the most recently dated transactions, newest
// first. When the server-side date sort is rejected, up to one unsorted
// page is fetched and ordered client-side before truncating to limit.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	props, err := s.schemas.TransactionProperties(ctx, s.dbs.Transactions)
	if err != nil {
		return nil, translateNotionErr("Transactions", err)
	}

	res, err := notion.QueryWithSort(ctx, s.api, s.dbs.Transactions, notion.QueryOptions{
		SortProperty: props.Date,
		Direction:    notionapi.SortOrderDESC,
		PageSize:     limit,
	})
	if err != nil {
		return nil, translateNotionErr("Transactions", err)
	}

	transactions := make([]Transaction, 0, len(res.Pages))
	for _, page := range res.Pages {
		name := notion.Title(page, props.Title)
		if name == "" {
			name = "Unnamed Transaction"
		}

		tx := Transaction{
			Name:   name,
			Amount: notion.Number(page, props.Amount),
			Type:   notion.ClassifyType(page, props.Type),
		}
		if date := notion.DateString(page, props.Date); date != "" {
			tx.Date = &date
			if t, err := time.Parse("2006-01-02", date); err == nil {
				tx.sortKey = t.UnixMilli()
			}
		}
		transactions = append(transactions, tx)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].sortKey > transactions[j].sortKey
	})
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}

	return transactions, nil
}
