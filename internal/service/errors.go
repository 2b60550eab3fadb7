// Package service holds the forum's business rules on top of the repositories.
package service

import (
	"errors"

	"forumhub/internal/models"
	"forumhub/internal/repository"
)

// notFoundOr turns repository.ErrNotFound into a NOT_FOUND AppError and passes
// other errors through.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// normalizePage clamps a 1-based page number.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func skipFor(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}
