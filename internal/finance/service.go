package finance

import (
	"github.com/rs/zerolog"

	"fintrack/internal/notion"
)

// Databases holds the external database IDs the tracker operates on. The
// categories ID commonly equals the transactions ID when both live in the
// same Notion database.
type Databases struct {
	Transactions string
	Categories   string
	Accounts     string
}

// Service implements the tracker's operations on top of the Notion API.
// It owns no durable state; Notion is the system of record.
type Service struct {
	api     notion.API
	schemas *notion.SchemaCache
	dbs     Databases
	log     zerolog.Logger
}

// NewService creates a Service.
func NewService(api notion.API, schemas *notion.SchemaCache, dbs Databases, log zerolog.Logger) *Service {
	return &Service{
		api:     api,
		schemas: schemas,
		dbs:     dbs,
		log:     log,
	}
}
