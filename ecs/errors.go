package ecs

import "github.com/rotisserie/eris"

var (
	// ErrEntityExhausted is returned by EntityManager.New when the 32-bit
	// identifier space has been fully issued without recycling.
	ErrEntityExhausted = eris.New("entity manager exhausted its identifier space")

	// ErrEmptySchema is returned by SchemaBuilder.Build when no component
	// kinds were declared.
	ErrEmptySchema = eris.New("schema declares no component kinds")

	// ErrSchemaTooWide is returned by SchemaBuilder.Build when more than
	// maxSchemaTags component kinds were declared; Archetype is a 64-bit
	// bitset and cannot address a wider schema.
	ErrSchemaTooWide = eris.New("schema declares more than 64 component kinds")

	// ErrEntityNotFound is returned by Model.Extend when the EntityID has no
	// entry in the Model's entity map (never issued, or already deleted). An
	// id from Model.New with no Pointer registrations yet is not "not found".
	ErrEntityNotFound = eris.New("entity does not exist")
)
