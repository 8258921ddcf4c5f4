package notion

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// TransactionType is the normalized direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// The extractors below pull typed values out of a page's property bag.
// They are total: absent or malformed properties degrade to zero values,
// never to a panic.

// Title returns the first text run of a title property, or "" if absent.
func Title(page notionapi.Page, property string) string {
	prop, ok := page.Properties[property]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}

// Number returns a number property's value, or 0 if absent.
func Number(page notionapi.Page, property string) float64 {
	if num, ok := page.Properties[property].(*notionapi.NumberProperty); ok {
		return num.Number
	}
	return 0
}

// DateString returns a date property's start date as YYYY-MM-DD, or "" if
// absent.
func DateString(page notionapi.Page, property string) string {
	date, ok := page.Properties[property].(*notionapi.DateProperty)
	if !ok || date.Date == nil || date.Date.Start == nil {
		return ""
	}
	return time.Time(*date.Date.Start).Format("2006-01-02")
}

// Balance reads a balance value that may be stored as a plain number, a
// formula producing a number or a string, or free rich text. String
// representations are stripped down to digits, '.' and '-' before parsing,
// so values like "$1,234.56 owed" still resolve. The result is rounded to
// 2 decimals; anything unparsable yields 0.
func Balance(page notionapi.Page, property string) float64 {
	var balance float64

	switch prop := page.Properties[property].(type) {
	case *notionapi.NumberProperty:
		balance = prop.Number
	case *notionapi.FormulaProperty:
		switch prop.Formula.Type {
		case notionapi.FormulaTypeNumber:
			balance = prop.Formula.Number
		case notionapi.FormulaTypeString:
			balance = parseAmountText(prop.Formula.String)
		}
	case *notionapi.RichTextProperty:
		if len(prop.RichText) > 0 {
			balance = parseAmountText(prop.RichText[0].PlainText)
		}
	}

	return round2(balance)
}

func parseAmountText(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, text)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ClassifyType normalizes a page's select property into income or expense.
// Absent or unrecognized values default to expense.
func ClassifyType(page notionapi.Page, property string) TransactionType {
	sel, ok := page.Properties[property].(*notionapi.SelectProperty)
	if !ok {
		return TypeExpense
	}
	return ClassifyTypeName(sel.Select.Name)
}

// ClassifyTypeName classifies a free-text type by case-insensitive
// substring. "income" wins when both words are present; anything else is
// an expense.
func ClassifyTypeName(name string) TransactionType {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "income") {
		return TypeIncome
	}
	return TypeExpense
}

// RelationContains reports whether a relation property links to the given
// record ID.
func RelationContains(page notionapi.Page, property, id string) bool {
	rel, ok := page.Properties[property].(*notionapi.RelationProperty)
	if !ok {
		return false
	}
	for _, r := range rel.Relation {
		if string(r.ID) == id {
			return true
		}
	}
	return false
}

// MatchSelectOption resolves a free-text transaction type against a select
// property's configured options: first by the income/expense substring
// heuristic, then by exact name. Returns "" when nothing matches.
func MatchSelectOption(config notionapi.PropertyConfig, input string) string {
	options := SelectOptions(config)
	inputLower := strings.ToLower(input)

	for _, opt := range options {
		nameLower := strings.ToLower(opt.Name)
		if strings.Contains(inputLower, "expense") && strings.Contains(nameLower, "expense") {
			return opt.Name
		}
		if strings.Contains(inputLower, "income") && strings.Contains(nameLower, "income") {
			return opt.Name
		}
	}

	for _, opt := range options {
		if opt.Name == input {
			return opt.Name
		}
	}

	return ""
}

// SelectOptions returns the configured options of a select property, or
// nil for any other property kind.
func SelectOptions(config notionapi.PropertyConfig) []notionapi.Option {
	switch c := config.(type) {
	case *notionapi.SelectPropertyConfig:
		return c.Select.Options
	case notionapi.SelectPropertyConfig:
		return c.Select.Options
	}
	return nil
}

// SelectOptionNames returns the option names of a select property in their
// configured order.
func SelectOptionNames(config notionapi.PropertyConfig) []string {
	options := SelectOptions(config)
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return names
}
