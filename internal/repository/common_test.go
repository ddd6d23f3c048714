package repository

import "github.com/Bessima/botform-intake/internal/config/db"

func NewTestDB(pool db.PgxPoolInterface) *db.DB {
	return &db.DB{
		Pool: pool,
	}
}
