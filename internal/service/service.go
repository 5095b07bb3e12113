// Package service contains the business rules of every API operation.
//
// The layers are:
//
//	Handler (HTTP)     parses requests, writes responses
//	Service (business) validates, checks ownership, orchestrates stores
//	Repository (data)  reads and writes sqlite or the blob store
//
// Services take repository interfaces, never *sqlite.DB, and return
// apperror values; the handler layer turns those into status codes.
package service

import (
	"errors"

	"github.com/sakif/sageexcel/internal/apperror"
)

// notOwned reports a resource that exists but belongs to someone else. It is
// indistinguishable from a missing one so ids cannot be discovered.
func notOwned(resource, id string) error {
	return apperror.NotFound(resource, id)
}

// asUserNotFound turns a missing-user NotFound into UserNotFound and passes
// everything else through.
func asUserNotFound(err error, id string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.UserNotFound(id)
	}
	return err
}
