package notion

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jomei/notionapi"
)

// Default property names. Users who keep the template databases untouched
// hit the exact-name fast path in ResolveRole; everyone else falls through
// to the type and keyword heuristics.
const (
	DefaultTransactionTitle    = "Transaction Name"
	DefaultTransactionAmount   = "Amount"
	DefaultTransactionType     = "Transaction Type"
	DefaultTransactionDate     = "Date"
	DefaultTransactionAccount  = "Linked Account"
	DefaultTransactionCategory = "Spending Category"
	DefaultTransactionNote     = "Note"

	DefaultAccountTitle   = "Name"
	DefaultAccountBalance = "Current Status"

	DefaultCategoryTitle = "Name"
)

// RoleSpec describes how a semantic role maps onto a database property.
type RoleSpec struct {
	// PreferredName is matched verbatim against the schema, and doubles as
	// the hardcoded fallback when nothing in the schema fits.
	PreferredName string

	// ExpectedTypes are tried in order against the schema's property types.
	ExpectedTypes []notionapi.PropertyConfigType

	// Keywords marks a relation role: instead of a plain type scan, the
	// role binds to the first relation property whose name contains one of
	// these keywords (case-insensitive).
	Keywords []string
}

// ResolveRole picks the property name serving a semantic role in the given
// schema. It never fails: when nothing matches it returns the preferred
// name even if that property does not exist, leaving any resulting write
// error to the caller.
//
// The Notion API returns properties as an unordered map, so type and
// keyword scans walk property names in sorted order to stay deterministic.
func ResolveRole(db *notionapi.Database, spec RoleSpec) string {
	if db == nil {
		return spec.PreferredName
	}

	if spec.PreferredName != "" {
		if _, ok := db.Properties[spec.PreferredName]; ok {
			return spec.PreferredName
		}
	}

	if len(spec.Keywords) > 0 {
		if name := matchRelationKeyword(db.Properties, spec.Keywords); name != "" {
			return name
		}
		return spec.PreferredName
	}

	for _, typ := range spec.ExpectedTypes {
		if name := firstOfType(db.Properties, typ); name != "" {
			return name
		}
	}

	return spec.PreferredName
}

func firstOfType(props notionapi.PropertyConfigs, typ notionapi.PropertyConfigType) string {
	for _, name := range sortedPropertyNames(props) {
		if props[name].GetType() == typ {
			return name
		}
	}
	return ""
}

func matchRelationKeyword(props notionapi.PropertyConfigs, keywords []string) string {
	for _, name := range sortedPropertyNames(props) {
		if props[name].GetType() != notionapi.PropertyConfigTypeRelation {
			continue
		}
		lower := strings.ToLower(name)
		for _, keyword := range keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return name
			}
		}
	}
	return ""
}

func sortedPropertyNames(props notionapi.PropertyConfigs) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransactionProperties holds the resolved property names of a
// transactions database.
type TransactionProperties struct {
	Title    string
	Amount   string
	Type     string
	Date     string
	Account  string
	Category string
	Note     string
}

// AccountProperties holds the resolved property names of an accounts
// database.
type AccountProperties struct {
	Title   string
	Balance string
}

// CategoryProperties holds the resolved property names of a categories
// database.
type CategoryProperties struct {
	Title string
}

// SchemaCache fetches database schemas lazily and keeps them for the
// lifetime of the process. It is safe for concurrent use and is only
// invalidated explicitly.
type SchemaCache struct {
	api API

	mu      sync.RWMutex
	schemas map[string]*notionapi.Database
}

// NewSchemaCache creates an empty cache backed by the given API.
func NewSchemaCache(api API) *SchemaCache {
	return &SchemaCache{
		api:     api,
		schemas: make(map[string]*notionapi.Database),
	}
}

// Get returns the schema for a database, fetching it at most once until
// the entry is invalidated. Fetch errors are returned untranslated.
func (c *SchemaCache) Get(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	c.mu.RLock()
	db, ok := c.schemas[databaseID]
	c.mu.RUnlock()
	if ok {
		return db, nil
	}

	db, err := c.api.RetrieveDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.schemas[databaseID] = db
	c.mu.Unlock()

	return db, nil
}

// Invalidate drops the cached schema for one database.
func (c *SchemaCache) Invalidate(databaseID string) {
	c.mu.Lock()
	delete(c.schemas, databaseID)
	c.mu.Unlock()
}

// Clear drops every cached schema.
func (c *SchemaCache) Clear() {
	c.mu.Lock()
	c.schemas = make(map[string]*notionapi.Database)
	c.mu.Unlock()
}

// TransactionProperties resolves the role mapping for a transactions
// database.
func (c *SchemaCache) TransactionProperties(ctx context.Context, databaseID string) (TransactionProperties, error) {
	db, err := c.Get(ctx, databaseID)
	if err != nil {
		return TransactionProperties{}, err
	}

	return TransactionProperties{
		Title: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionTitle,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeTitle},
		}),
		Amount: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionAmount,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeNumber},
		}),
		Type: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionType,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeSelect},
		}),
		Date: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionDate,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeDate},
		}),
		Account: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionAccount,
			Keywords:      []string{"account"},
		}),
		Category: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionCategory,
			Keywords:      []string{"category", "spending"},
		}),
		Note: ResolveRole(db, RoleSpec{
			PreferredName: DefaultTransactionNote,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeRichText},
		}),
	}, nil
}

// AccountProperties resolves the role mapping for an accounts database.
// The balance role accepts number and formula properties, in that order.
func (c *SchemaCache) AccountProperties(ctx context.Context, databaseID string) (AccountProperties, error) {
	db, err := c.Get(ctx, databaseID)
	if err != nil {
		return AccountProperties{}, err
	}

	return AccountProperties{
		Title: ResolveRole(db, RoleSpec{
			PreferredName: DefaultAccountTitle,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeTitle},
		}),
		Balance: ResolveRole(db, RoleSpec{
			PreferredName: DefaultAccountBalance,
			ExpectedTypes: []notionapi.PropertyConfigType{
				notionapi.PropertyConfigTypeNumber,
				notionapi.PropertyConfigTypeFormula,
			},
		}),
	}, nil
}

// CategoryProperties resolves the role mapping for a categories database.
func (c *SchemaCache) CategoryProperties(ctx context.Context, databaseID string) (CategoryProperties, error) {
	db, err := c.Get(ctx, databaseID)
	if err != nil {
		return CategoryProperties{}, err
	}

	return CategoryProperties{
		Title: ResolveRole(db, RoleSpec{
			PreferredName: DefaultCategoryTitle,
			ExpectedTypes: []notionapi.PropertyConfigType{notionapi.PropertyConfigTypeTitle},
		}),
	}, nil
}
