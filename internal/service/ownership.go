package service

import perrors "github.com/abgdnv/gocatalog/internal/errors"

// assertOwner allows an action only when the caller is the product owner.
func assertOwner(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return perrors.ErrAccessDenied
	}
	return nil
}
