package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeObjects is an in-memory objectClient keyed by bucket/key.
type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Destination_WriteRead(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}}
	d := &S3Destination{client: fake, bucket: "backups", key: "qw/prefs.jsonl"}
	ctx := context.Background()

	if _, err := d.Read(ctx); err == nil {
		t.Fatal("expected error reading a missing object")
	}

	payload := []byte(`{"version":"1","type":"header"}` + "\n")
	if err := d.Write(ctx, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := d.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Read = %q", got)
	}

	fake.putErr = errors.New("access denied")
	if err := d.Write(ctx, payload); err == nil {
		t.Fatal("expected put error to surface")
	}
}
