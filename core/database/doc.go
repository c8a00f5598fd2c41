// Package database handles the MySQL database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// properly configure MySQL connections based on the application's
// configuration: connection pooling, I/O timeouts, a startup ping, and
// driver error translation (unique constraint violations surface as
// gorm.ErrDuplicatedKey, which the store layer depends on).
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
