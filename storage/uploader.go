package storage

import "context"

// Object is a small document written to a bucket in one request.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Body         []byte
}

type StoredObject struct {
	Key  string
	URL  string // пусто, если публичный адрес не настроен
	ETag string
}

// ObjectStore keeps archived documents by key.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*StoredObject, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}
