package database

import "context"

// Transactor runs fn inside one transaction carried by the context passed to fn.
// A call made with a context that already carries a transaction joins it.
// Any error or panic from fn rolls the transaction back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
