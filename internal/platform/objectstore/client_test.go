package objectstore

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.False(t, isNotFoundError(nil))
	assert.False(t, isNotFoundError(errors.New("plain")))
	assert.True(t, isNotFoundError(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.True(t, isNotFoundError(&smithy.GenericAPIError{Code: "NoSuchBucket"}))
	assert.True(t, isNotFoundError(&smithy.GenericAPIError{Code: "404"}))
	assert.False(t, isNotFoundError(&smithy.GenericAPIError{Code: "AccessDenied"}))
}

func TestIsBucketAlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	assert.False(t, isBucketAlreadyOwnedByYou(nil))
	assert.False(t, isBucketAlreadyOwnedByYou(errors.New("plain")))
	assert.True(t, isBucketAlreadyOwnedByYou(&smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}))
	assert.True(t, isBucketAlreadyOwnedByYou(&smithy.GenericAPIError{Code: "BucketAlreadyExists"}))
}
