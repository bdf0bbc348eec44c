package models

import "github.com/google/uuid"

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Project{},
		&Comment{},
		&Like{},
		&Bookmark{},
	}
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
