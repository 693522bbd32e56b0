package kvdb

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("key not found")
	ErrInvalidKey     = errors.New("invalid key")
	ErrBucketNotFound = errors.New("bucket not found")
)

type InvalidKeyError struct {
	Key    string
	Reason string
}
type NotFoundError struct {
	Key string
}

type BucketNotFoundError struct {
	Bucket string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %s: %s", e.Key, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *BucketNotFoundError) Error() string {
	return fmt.Sprintf("bucket not found: %s", e.Bucket)
}

func (e *BucketNotFoundError) Is(target error) bool {
	return target == ErrBucketNotFound
}
