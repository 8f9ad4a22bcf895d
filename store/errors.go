package store

import "errors"

// ErrKeyNotFound is returned by Get when the key has no stored value.
var ErrKeyNotFound = errors.New("store: key not found")

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store: store is closed")
