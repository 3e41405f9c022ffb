package storage

import (
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 is an in-memory stand-in for the handful of S3 calls S3Store makes.
type fakeS3 struct {
	s3iface.S3API

	buckets      map[string]bool
	objects      map[string][]byte // "bucket/key"
	contentTypes map[string]string
	created      []string

	puts    int
	failPut int // 1-based PutObject call to fail, 0 for none
	deleted []string
}

func newFakeS3(buckets ...string) *fakeS3 {
	f := &fakeS3{
		buckets:      make(map[string]bool),
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeS3) HeadBucket(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
	if !f.buckets[aws.StringValue(in.Bucket)] {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
	name := aws.StringValue(in.Bucket)
	if f.buckets[name] {
		return nil, awserr.New(s3.ErrCodeBucketAlreadyOwnedByYou, "owned", nil)
	}
	f.buckets[name] = true
	f.created = append(f.created, name)
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) ListObjectsV2Pages(in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	bucket := aws.StringValue(in.Bucket) + "/"
	prefix := aws.StringValue(in.Prefix)

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, bucket) && strings.HasPrefix(strings.TrimPrefix(k, bucket), prefix) {
			keys = append(keys, strings.TrimPrefix(k, bucket))
		}
	}
	sort.Strings(keys)

	page := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k)})
	}
	fn(page, true)
	return nil
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	f.puts++
	if f.puts == f.failPut {
		return nil, awserr.New("InternalError", "We encountered an internal error", nil)
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	k := aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	f.objects[k] = data
	f.contentTypes[k] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	k := aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	delete(f.objects, k)
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SequentialSaves(t *testing.T) {
	fake := newFakeS3("scans")
	store := &S3Store{Client: fake, Bucket: "scans"}
	opts := Options{Directory: "batch/", FileName: "pic", Format: FormatPNG}

	if _, err := store.Save(newTestImages(2), opts); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	res, err := store.Save(newTestImages(3), opts)
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if res.FirstCounter != 3 {
		t.Errorf("FirstCounter: got %d, want 3", res.FirstCounter)
	}
	want := []string{"batch/pic3.png", "batch/pic4.png", "batch/pic5.png"}
	for i, key := range want {
		if res.Paths[i] != key {
			t.Errorf("Paths[%d]: got %s, want %s", i, res.Paths[i], key)
		}
	}
	if len(fake.objects) != 5 {
		t.Errorf("objects: got %d, want 5", len(fake.objects))
	}
	if ct := fake.contentTypes["scans/batch/pic1.png"]; ct != "image/png" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestS3Store_IgnoresOtherPrefixes(t *testing.T) {
	fake := newFakeS3("scans")
	fake.objects["scans/other/pic1.png"] = []byte("x")
	fake.objects["scans/batch/deeper/pic1.png"] = []byte("x")
	store := &S3Store{Client: fake, Bucket: "scans"}

	res, err := store.Save(newTestImages(1), Options{Directory: "batch", FileName: "pic", Format: FormatPNG})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Paths[0] != "batch/pic1.png" {
		t.Errorf("Paths[0]: got %s, want batch/pic1.png", res.Paths[0])
	}
}

func TestS3Store_MissingBucket(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{Client: fake, Bucket: "nowhere"}

	_, err := store.Save(newTestImages(1), Options{FileName: "pic", Format: FormatJPG})
	if !errors.Is(err, ErrInvalidDirectory) {
		t.Fatalf("error: got %v, want ErrInvalidDirectory", err)
	}
	if len(fake.objects) != 0 || len(fake.created) != 0 {
		t.Error("nothing should be written or created")
	}
}

func TestS3Store_CreateBucket(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{Client: fake, Bucket: "fresh"}

	res, err := store.Save(newTestImages(2), Options{FileName: "pic", Format: FormatJPG, CreateDirectory: true})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(fake.created) != 1 || fake.created[0] != "fresh" {
		t.Errorf("created buckets: got %v", fake.created)
	}
	if res.Paths[1] != "pic2.jpg" {
		t.Errorf("Paths[1]: got %s, want pic2.jpg", res.Paths[1])
	}
}

func TestS3Store_FailedUploadRollsBack(t *testing.T) {
	fake := newFakeS3("scans")
	fake.objects["scans/batch/pic1.png"] = []byte("x")
	fake.failPut = 3
	store := &S3Store{Client: fake, Bucket: "scans"}

	res, err := store.Save(newTestImages(3), Options{Directory: "batch", FileName: "pic", Format: FormatPNG})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if res != nil {
		t.Errorf("result: got %+v, want nil", res)
	}

	want := []string{"batch/pic2.png", "batch/pic3.png"}
	if len(fake.deleted) != len(want) {
		t.Fatalf("deleted: got %v, want %v", fake.deleted, want)
	}
	for i, key := range want {
		if fake.deleted[i] != key {
			t.Errorf("deleted[%d]: got %s, want %s", i, fake.deleted[i], key)
		}
	}
	if len(fake.objects) != 1 {
		t.Errorf("objects: got %d, want only the one that was already there", len(fake.objects))
	}
}
