package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/mnln/accounts/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fakeClient keeps objects in memory. Multipart calls are never reached for
// bodies smaller than the uploader's part size.
type fakeClient struct {
	objects      map[string]string
	types        map[string]string
	headErr      error
	createErr    error
	putErr       error
	getErr       error
	createCalled int
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(b)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (f *fakeClient) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (f *fakeClient) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("unexpected multipart upload")
}

func (f *fakeClient) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeClient) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeClient) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalled++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentType:   aws.String(f.types[aws.ToString(in.Key)]),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestPutGet_RoundTrip(t *testing.T) {
	fc := newFakeClient()
	st := NewWithClient(fc, "mnln")

	require.NoError(t, st.Put(context.Background(), "avatars/1/5.gif", strings.NewReader("GIF89a"), "image/gif"))

	obj, err := st.Get(context.Background(), "avatars/1/5.gif")
	require.NoError(t, err)
	defer obj.Body.Close()

	b, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(b))
	assert.Equal(t, "image/gif", obj.ContentType)
	assert.Equal(t, int64(6), obj.ContentLength)
}

func TestPut_Error(t *testing.T) {
	fc := newFakeClient()
	fc.putErr = errBoom
	st := NewWithClient(fc, "mnln")

	err := st.Put(context.Background(), "k", strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, errBoom)
}

func TestGet_Errors(t *testing.T) {
	fc := newFakeClient()
	st := NewWithClient(fc, "mnln")

	_, err := st.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	fc.getErr = errBoom
	_, err = st.Get(context.Background(), "any")
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestBucketExists(t *testing.T) {
	tests := []struct {
		name    string
		headErr error
		want    bool
		wantErr bool
	}{
		{"exists", nil, true, false},
		{"typed not found", &types.NotFound{}, false, false},
		{"api not found", &smithy.GenericAPIError{Code: "NotFound"}, false, false},
		{"forbidden", &smithy.GenericAPIError{Code: "Forbidden"}, false, true},
		{"network", errBoom, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeClient()
			fc.headErr = tt.headErr

			got, err := NewWithClient(fc, "mnln").BucketExists(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	t.Run("already there", func(t *testing.T) {
		fc := newFakeClient()
		require.NoError(t, NewWithClient(fc, "mnln").EnsureBucket(context.Background()))
		assert.Zero(t, fc.createCalled)
	})

	t.Run("created", func(t *testing.T) {
		fc := newFakeClient()
		fc.headErr = &types.NotFound{}
		require.NoError(t, NewWithClient(fc, "mnln").EnsureBucket(context.Background()))
		assert.Equal(t, 1, fc.createCalled)
	})

	t.Run("already owned counts as success", func(t *testing.T) {
		fc := newFakeClient()
		fc.headErr = &types.NotFound{}
		fc.createErr = &types.BucketAlreadyOwnedByYou{}
		require.NoError(t, NewWithClient(fc, "mnln").EnsureBucket(context.Background()))
	})

	t.Run("create fails", func(t *testing.T) {
		fc := newFakeClient()
		fc.headErr = &types.NotFound{}
		fc.createErr = errBoom
		require.ErrorIs(t, NewWithClient(fc, "mnln").EnsureBucket(context.Background()), errBoom)
	})

	t.Run("head fails", func(t *testing.T) {
		fc := newFakeClient()
		fc.headErr = errBoom
		require.ErrorIs(t, NewWithClient(fc, "mnln").EnsureBucket(context.Background()), errBoom)
		assert.Zero(t, fc.createCalled)
	})
}

func TestNew_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		assert.Equal(t, "minio-secret", creds.SecretAccessKey)
		return aws.Config{}, nil
	}

	fc := newFakeClient()
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fc
	}

	st, err := New(context.Background(), Options{
		Region:       "eu-central-1",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "mnln",
	})
	require.NoError(t, err)
	assert.Equal(t, "mnln", st.Bucket())
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNew_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errBoom
	}

	_, err := New(context.Background(), Options{})
	require.ErrorIs(t, err, errBoom)
}
