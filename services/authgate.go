package services

import "github.com/sjbaraho/app-places-backend/utils/errors"

// Authorize allows a mutation only when the caller owns the resource. It must
// run before any store write.
func Authorize(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return errors.ErrForbidden
	}
	return nil
}
