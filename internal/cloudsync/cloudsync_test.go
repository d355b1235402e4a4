package cloudsync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"openplay-app/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "sessions/riverside-park-s1.json", ObjectKey(model.Summary{SessionID: "s1", Location: "Riverside Park"}))
	assert.Equal(t, "sessions/session-s2.json", ObjectKey(model.Summary{SessionID: "s2"}))
}

func TestSyncUploadsSummary(t *testing.T) {
	putter := &fakePutter{}
	uploader := newUploader(putter, Config{Bucket: "openplay", PublicBaseURL: "https://cdn.example.com/"})

	summary := model.Summary{SessionID: "s1", Location: "Riverside Park", Matches: 4}
	url, err := uploader.Sync(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/sessions/riverside-park-s1.json", url)

	require.Len(t, putter.inputs, 1)
	assert.Equal(t, "openplay", aws.ToString(putter.inputs[0].Bucket))
	assert.Equal(t, "application/json", aws.ToString(putter.inputs[0].ContentType))

	var decoded model.Summary
	require.NoError(t, json.Unmarshal(putter.bodies[0], &decoded))
	assert.Equal(t, 4, decoded.Matches)
}

func TestSyncErrors(t *testing.T) {
	uploader := newUploader(&fakePutter{err: errors.New("offline")}, Config{Bucket: "openplay"})

	_, err := uploader.Sync(context.Background(), model.Summary{SessionID: "s1"})
	assert.ErrorContains(t, err, "offline")

	_, err = uploader.Sync(context.Background(), model.Summary{})
	assert.Error(t, err)
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(context.Background(), Config{})
	assert.Error(t, err)
	assert.False(t, Config{}.Enabled())
}
