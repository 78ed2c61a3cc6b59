package database

import "folio/internal/models"

// PersistentModels lists the models managed by Migrate, parents first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Author{},
		&models.Book{},
		&models.Library{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	}
}
