package s3

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"context"
)

// fakeS3 is an in-memory s3API used by the adapter tests. It supports prefix
// listing, pagination, byte ranges and injectable per-operation failures.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string]fakeObject
	pageSize int

	failOp   string
	failLeft int
	failErr  error
}

type fakeObject struct {
	data        []byte
	contentType string
	modTime     time.Time
	metadata    map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

// failNext makes the next n calls of the named operation return err.
func (f *fakeS3) failNext(op string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOp = op
	f.failLeft = n
	f.failErr = err
}

func (f *fakeS3) maybeFail(op string) error {
	if f.failOp == op && f.failLeft > 0 {
		f.failLeft--
		return f.failErr
	}
	return nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("put"); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.ToString(in.ContentType),
		modTime:     time.Now(),
		metadata:    in.Metadata,
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("get"); err != nil {
		return nil, err
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	data := obj.data
	if rng := aws.ToString(in.Range); rng != "" {
		var err error
		data, err = sliceRange(data, rng)
		if err != nil {
			return nil, err
		}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(obj.contentType),
		LastModified:  aws.Time(obj.modTime),
	}, nil
}

func sliceRange(data []byte, rng string) ([]byte, error) {
	spec, ok := strings.CutPrefix(rng, "bytes=")
	if !ok {
		return nil, fmt.Errorf("bad range %q", rng)
	}
	startStr, endStr, _ := strings.Cut(spec, "-")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return nil, err
	}
	if start >= len(data) {
		return nil, nil
	}
	end := len(data) - 1
	if endStr != "" {
		if end, err = strconv.Atoi(endStr); err != nil {
			return nil, err
		}
		if end >= len(data) {
			end = len(data) - 1
		}
	}
	return data[start : end+1], nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("head"); err != nil {
		return nil, err
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		LastModified:  aws.Time(obj.modTime),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("delete"); err != nil {
		return nil, err
	}

	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("deletes"); err != nil {
		return nil, err
	}

	for _, obj := range in.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("list"); err != nil {
		return nil, err
	}

	prefix := aws.ToString(in.Prefix)
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(aws.ToString(in.ContinuationToken))
	}

	limit := len(keys)
	if f.pageSize > 0 && start+f.pageSize < limit {
		limit = start + f.pageSize
	}
	if in.MaxKeys != nil && start+int(aws.ToInt32(in.MaxKeys)) < limit {
		limit = start + int(aws.ToInt32(in.MaxKeys))
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(limit < len(keys))}
	for _, key := range keys[start:limit] {
		obj := f.objects[key]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modTime),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		out.NextContinuationToken = aws.String(strconv.Itoa(limit))
	}
	return out, nil
}

func (f *fakeS3) CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail("copy"); err != nil {
		return nil, err
	}

	// CopySource is "bucket/key".
	_, srcKey, ok := strings.Cut(aws.ToString(in.CopySource), "/")
	if !ok {
		return nil, fmt.Errorf("bad copy source %q", aws.ToString(in.CopySource))
	}
	src, exists := f.objects[srcKey]
	if !exists {
		return nil, &types.NoSuchKey{}
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{
		data:        append([]byte(nil), src.data...),
		contentType: src.contentType,
		modTime:     time.Now(),
	}
	return &s3.CopyObjectOutput{}, nil
}

var _ s3API = (*fakeS3)(nil)
