// Package migrations встраивает SQL-миграции в бинарник:
// деплой не зависит от файлов на диске.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
