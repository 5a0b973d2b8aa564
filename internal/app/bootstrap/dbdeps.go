// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/system/workers"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app. Pointer
// fields are shared by every hook that receives a copy.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Images stores uploaded news images on local disk.
	Images *storage.Local

	// Consoles holds one admin console per browser; Sweeper evicts the
	// idle ones.
	Consoles *console.Registry
	Sweeper  *workers.ConsoleSweeper
}
