package app

import "errors"

// ErrBookNotFound indicates the requested book is not in the catalog.
var ErrBookNotFound = errors.New("book not found")
