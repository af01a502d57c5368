package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqUndefinedTable      = "42P01"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// likeEscaper escapes LIKE wildcards so user input only matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func prefixPattern(q string) string {
	return likeEscaper.Replace(q) + "%"
}

func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
