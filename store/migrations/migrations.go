// Package migrations 内嵌 sqlite 存储的 goose 迁移脚本。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
