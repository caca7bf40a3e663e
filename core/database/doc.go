// Package database handles database connections.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (tests, local runs) connections from the application's configuration.
//
// # Connect
//
// Connect opens the dialector selected by Config.Driver, applies pool settings
// and verifies the connection with a ping bounded by TimeoutSeconds. SQLite
// connections are pinned to a single connection so that ":memory:" databases
// keep their schema for the lifetime of the *gorm.DB.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
