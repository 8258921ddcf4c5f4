package finance

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"fintrack/internal/notion"
)

// fakeAPI serves canned schemas and routes queries per database ID.
type fakeAPI struct {
	databases  map[string]*notionapi.Database
	retrieveFn func(databaseID string) (*notionapi.Database, error)
	queryFn    func(databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	createFn   func(databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	created []notionapi.Properties
}

func (f *fakeAPI) RetrieveDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	if f.retrieveFn != nil {
		return f.retrieveFn(databaseID)
	}
	if db, ok := f.databases[databaseID]; ok {
		return db, nil
	}
	return nil, &notionapi.Error{Code: "object_not_found", Message: "Could not find database"}
}

func (f *fakeAPI) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if f.queryFn != nil {
		return f.queryFn(databaseID, req)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (f *fakeAPI) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.created = append(f.created, properties)
	if f.createFn != nil {
		return f.createFn(databaseID, properties)
	}
	return &notionapi.Page{ID: "created"}, nil
}

const (
	txDB       = "tx-db"
	catDB      = "cat-db"
	accountsDB = "acc-db"
)

func newTestService(api *fakeAPI) *Service {
	return NewService(api, notion.NewSchemaCache(api), Databases{
		Transactions: txDB,
		Categories:   catDB,
		Accounts:     accountsDB,
	}, zerolog.Nop())
}

// transactionsSchema is a template-shaped transactions database.
func transactionsSchema() *notionapi.Database {
	return &notionapi.Database{Properties: notionapi.PropertyConfigs{
		"Transaction Name": &notionapi.TitlePropertyConfig{Type: notionapi.PropertyConfigTypeTitle},
		"Amount":           &notionapi.NumberPropertyConfig{Type: notionapi.PropertyConfigTypeNumber},
		"Transaction Type": &notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{
				Options: []notionapi.Option{
					{Name: "💰 Income"},
					{Name: "💸 Expense"},
				},
			},
		},
		"Date":              &notionapi.DatePropertyConfig{Type: notionapi.PropertyConfigTypeDate},
		"Linked Account":    &notionapi.RelationPropertyConfig{Type: notionapi.PropertyConfigTypeRelation},
		"Spending Category": &notionapi.RelationPropertyConfig{Type: notionapi.PropertyConfigTypeRelation},
		"Note":              &notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText},
	}}
}

func titledSchema() *notionapi.Database {
	return &notionapi.Database{Properties: notionapi.PropertyConfigs{
		"Name": &notionapi.TitlePropertyConfig{Type: notionapi.PropertyConfigTypeTitle},
	}}
}

func titledPage(id, name string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Name": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: name}},
			},
		},
	}
}

func txPage(id, name string, amount float64, option, date, accountID string) notionapi.Page {
	props := notionapi.Properties{
		"Transaction Name": &notionapi.TitleProperty{
			Title: []notionapi.RichText{{PlainText: name}},
		},
		"Amount": &notionapi.NumberProperty{Number: amount},
		"Transaction Type": &notionapi.SelectProperty{
			Select: notionapi.Option{Name: option},
		},
	}
	if date != "" {
		parsed, _ := time.Parse("2006-01-02", date)
		start := notionapi.Date(parsed)
		props["Date"] = &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
	}
	if accountID != "" {
		props["Linked Account"] = &notionapi.RelationProperty{
			Relation: []notionapi.Relation{{ID: notionapi.PageID(accountID)}},
		}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}
