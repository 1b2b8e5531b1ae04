package postgresql

import (
	"database/sql"
	"io/fs"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations прогоняет goose-миграции из встроенной ФС при старте.
func RunMigrations(dsn string, migrations fs.FS) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("Не удалось открыть соединение для миграций: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: неверный диалект: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("goose: миграции не применились: %v", err)
	}
	log.Println("✅ Миграции применены")
}
