package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	headErr      error
	createCalled bool
	createErr    error

	pages     []*s3.ListObjectsV2Output
	pageIndex int
	listErr   error

	objects map[string][]byte
	getErr  error
}

func (f *fakeAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalled = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.pageIndex >= len(f.pages) {
		return &s3.ListObjectsV2Output{}, nil
	}
	page := f.pages[f.pageIndex]
	f.pageIndex++
	return page, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	content, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(content))}, nil
}

func TestEnsureBucket_AlreadyExists(t *testing.T) {
	fake := &fakeAPI{}
	client := &Client{api: fake}

	err := client.EnsureBucket(context.Background(), "docs")
	require.NoError(t, err)
	assert.False(t, fake.createCalled)
}

func TestEnsureBucket_CreatesOnNotFound(t *testing.T) {
	fake := &fakeAPI{headErr: &types.NotFound{}}
	client := &Client{api: fake}

	err := client.EnsureBucket(context.Background(), "docs")
	require.NoError(t, err)
	assert.True(t, fake.createCalled)
}

func TestEnsureBucket_OtherHeadErrorPropagates(t *testing.T) {
	headErr := errors.New("access denied")
	fake := &fakeAPI{headErr: headErr}
	client := &Client{api: fake}

	err := client.EnsureBucket(context.Background(), "docs")
	require.Error(t, err)
	assert.ErrorIs(t, err, headErr)
	assert.False(t, fake.createCalled)
}

func TestEnsureBucket_CreateFailurePropagates(t *testing.T) {
	fake := &fakeAPI{headErr: &types.NotFound{}, createErr: errors.New("denied")}
	client := &Client{api: fake}

	err := client.EnsureBucket(context.Background(), "docs")
	assert.Error(t, err)
}

func TestList_EmptyBucketNormalizesToNoFiles(t *testing.T) {
	client := &Client{api: &fakeAPI{}}

	keys, err := client.List(context.Background(), "docs")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestList_CollectsAllPages(t *testing.T) {
	fake := &fakeAPI{
		pages: []*s3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					{Key: aws.String("a.pdf")},
					{Key: aws.String("b.jpg")},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("token"),
			},
			{
				Contents: []types.Object{
					{Key: aws.String("c.png")},
				},
			},
		},
	}
	client := &Client{api: fake}

	keys, err := client.List(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.jpg", "c.png"}, keys)
}

func TestDownload(t *testing.T) {
	fake := &fakeAPI{objects: map[string][]byte{"a.pdf": []byte("%PDF-1.4")}}
	client := &Client{api: fake}

	content, err := client.Download(context.Background(), "docs", "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), content)

	_, err = client.Download(context.Background(), "docs", "missing.pdf")
	assert.Error(t, err)
}
