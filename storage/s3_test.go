package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	s3iface.S3API
	mock.Mock
}

func (m *mockS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	args := m.Called(aws.StringValue(in.Key))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(args.Get(0).([]byte)))}, args.Error(1)
}

func (m *mockS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	args := m.Called(aws.StringValue(in.Key), body, aws.StringValue(in.ACL))
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, _ ...request.Option) (*s3.HeadBucketOutput, error) {
	args := m.Called(aws.StringValue(in.Bucket))
	return &s3.HeadBucketOutput{}, args.Error(0)
}

func TestS3Backend_StoreFetch(t *testing.T) {
	client := &mockS3{}
	backend := newS3Backend(client, S3Config{Bucket: "shards", Prefix: "/prod/", Region: "us-east-1"}, discardLogger())

	data := []byte("encoded shard")
	id := interfaces.ComputeID(data)
	key := "prod/shards/" + id.String()

	client.On("PutObjectWithContext", key, data, s3.ObjectCannedACLPrivate).Return(nil)
	client.On("GetObjectWithContext", key).Return(data, nil)

	stored, err := backend.Store(context.Background(), data, interfaces.ShardType)
	require.NoError(t, err)
	assert.Equal(t, id, stored)

	fetched, err := backend.Fetch(context.Background(), id, interfaces.ShardType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	client.AssertExpectations(t)
}

func TestS3Backend_NotFound(t *testing.T) {
	client := &mockS3{}
	backend := newS3Backend(client, S3Config{Bucket: "shards", Region: "us-east-1"}, discardLogger())

	id := interfaces.ComputeID([]byte("missing"))
	client.On("GetObjectWithContext", "manifests/"+id.String()).
		Return(nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil))

	_, err := backend.Fetch(context.Background(), id, interfaces.ManifestType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestS3Backend_Available(t *testing.T) {
	client := &mockS3{}
	backend := newS3Backend(client, S3Config{Bucket: "shards", Region: "us-east-1"}, discardLogger())

	client.On("HeadBucketWithContext", "shards").Return(nil).Once()
	assert.True(t, backend.Available(context.Background()))

	client.On("HeadBucketWithContext", "shards").Return(awserr.New("Forbidden", "denied", nil)).Once()
	assert.False(t, backend.Available(context.Background()))
}
