// Package catalog stores the books the storefront browses and adds to the
// cart. It is consulted at add-to-cart time only; cart lines are never
// re-validated against it afterward.
package catalog

import "ikirezi/pkg/domain"

// Store defines persistence operations for catalog books.
type Store interface {
	SaveBook(book domain.Book) error
	GetBook(id string) (domain.Book, bool, error)
	ListBooks() ([]domain.Book, error)
	DeleteBook(id string) error
}
