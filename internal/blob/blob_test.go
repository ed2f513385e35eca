package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func runBlobSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "data_dumps/a.json", strings.NewReader(`{"a":1}`), PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "data_dumps/a.json" || info.Size != 7 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "data_dumps/a.json", strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := s.Put(ctx, "other/b.txt", strings.NewReader("b"), PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	if _, err := s.Put(ctx, "data_dumps/0.json", strings.NewReader("{}"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}

	_, rc, err := s.Get(ctx, "data_dumps/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != `{"a":1}` {
		t.Fatalf("unexpected content %q", b)
	}
	if _, _, err := s.Get(ctx, "data_dumps/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := s.List(ctx, "data_dumps/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "data_dumps/0.json" || list[1].Key != "data_dumps/a.json" {
		t.Fatalf("unexpected list %+v", list)
	}

	ok, err := s.Delete(ctx, "data_dumps/a.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = s.Delete(ctx, "data_dumps/a.json")
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}

	for _, bad := range []string{"", "../etc/passwd", "/abs", "a/../../b", `a\b`} {
		if _, err := s.Put(ctx, bad, strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", bad, err)
		}
	}
}

func TestMemory(t *testing.T) {
	runBlobSuite(t, NewMemory())
}

func TestFilesystem(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	runBlobSuite(t, s)
}

// fakeS3 минимальная подмена S3 API для Head/Get/Put/Delete/ListObjectsV2 в path-style.
type fakeS3 struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := func(code int, body string, hdr http.Header) *http.Response {
		if hdr == nil {
			hdr = http.Header{}
		}
		return &http.Response{StatusCode: code, Header: hdr, Body: io.NopCloser(strings.NewReader(body)), Request: req}
	}
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objs {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			b.WriteString("<Contents><Key>" + k + "</Key><Size>" + strconv.Itoa(len(f.objs[k])) +
				"</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>")
		}
		b.WriteString("</ListBucketResult>")
		return resp(http.StatusOK, b.String(), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	obj, exists := f.objs[key]
	switch req.Method {
	case http.MethodHead:
		if !exists {
			return resp(http.StatusNotFound, "", nil), nil
		}
		return resp(http.StatusOK, "", http.Header{"Content-Length": {strconv.Itoa(len(obj))}}), nil
	case http.MethodGet:
		if !exists {
			return resp(http.StatusNotFound, "<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>",
				http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return resp(http.StatusOK, string(obj), http.Header{
			"Content-Length": {strconv.Itoa(len(obj))},
			"Content-Type":   {"application/json"},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
		}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			body = decodeAWSChunked(body)
		}
		f.objs[key] = body
		return resp(http.StatusOK, "", http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(f.objs, key)
		return resp(http.StatusNoContent, "", nil), nil
	}
	return resp(http.StatusNotImplemented, "", nil), nil
}

// decodeAWSChunked разбирает тело в кодировке aws-chunked: "<hex>[;ext]\r\n<data>\r\n ... 0\r\n".
func decodeAWSChunked(b []byte) []byte {
	var out bytes.Buffer
	for len(b) > 0 {
		i := bytes.Index(b, []byte("\r\n"))
		if i < 0 {
			break
		}
		sizeStr := string(b[:i])
		if j := strings.IndexByte(sizeStr, ';'); j >= 0 {
			sizeStr = sizeStr[:j]
		}
		n, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil || n == 0 {
			break
		}
		b = b[i+2:]
		out.Write(b[:n])
		b = b[n:]
		b = bytes.TrimPrefix(b, []byte("\r\n"))
	}
	return out.Bytes()
}

func TestS3WithFakeTransport(t *testing.T) {
	fake := &fakeS3{objs: make(map[string][]byte)}
	s, err := NewS3(context.Background(), S3Config{
		Bucket:          "dumps",
		Region:          "us-east-1",
		Endpoint:        "https://s3.fake.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.RetryMaxAttempts = 1
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.Driver() != DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}
	runBlobSuite(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || s.Driver() != DriverMemory {
		t.Fatalf("memory: %v %v", s, err)
	}
	s, err = Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil || s.Driver() != DriverFilesystem {
		t.Fatalf("default fs: %v %v", s, err)
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatal("expected error for s3 without bucket")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
