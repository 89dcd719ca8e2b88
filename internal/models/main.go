package models

// ModelRegistry lists every model covered by GORM auto-migration.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
