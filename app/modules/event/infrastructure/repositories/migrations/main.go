package eventmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the event module schema. It depends on the users table
// and runs after the user migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
