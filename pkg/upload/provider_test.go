package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yi-nology/lab_portal/pkg/storage/object"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      int
	deletes   int
	putErr    error
	deleteErr error
	signErr   error
	lastSign  time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) PutObject(_ context.Context, key string, data io.Reader, _ string, _ int64) (*object.PutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	f.objects[key] = body
	return &object.PutResult{Key: key, URL: "https://lab.oss-cn-hangzhou.aliyuncs.com/" + key, StatusCode: 200}, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) (*object.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if _, ok := f.objects[key]; !ok {
		return &object.DeleteResult{StatusCode: 404}, nil
	}
	delete(f.objects, key)
	return &object.DeleteResult{StatusCode: 204}, nil
}

func (f *fakeStore) SignURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.lastSign = expiry
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://signed.example/" + key + "?Expires=x", nil
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix, hash, ext, want string
	}{
		{"strapi", "abc", ".png", "strapi/abc.png"},
		{"/strapi/", "abc", ".png", "strapi/abc.png"},
		{"media/2024", "h", ".pdf", "media/2024/h.pdf"},
		{"", "abc", ".png", "abc.png"},
		{"", "noext", "", "noext"},
	}
	for _, tc := range cases {
		if got := ObjectKey(tc.prefix, tc.hash, tc.ext); got != tc.want {
			t.Fatalf("ObjectKey(%q,%q,%q) = %q, want %q", tc.prefix, tc.hash, tc.ext, got, tc.want)
		}
	}
}

func TestUploadUsesStoreURLWithoutBaseURL(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi", Region: "oss-cn-hangzhou", Bucket: "lab"}, store, nil)

	file := &File{Name: "a.png", Hash: "abc", Ext: ".png", Mime: "image/png", Buffer: []byte("png")}
	require.NoError(t, p.Upload(context.Background(), file))

	require.Equal(t, "https://lab.oss-cn-hangzhou.aliyuncs.com/strapi/abc.png", file.URL)
	require.Equal(t, ProviderName, file.Provider)
	require.Equal(t, &ProviderMetadata{
		UploadPath: "strapi/abc.png",
		OSSURL:     "https://lab.oss-cn-hangzhou.aliyuncs.com/strapi/abc.png",
		Region:     "oss-cn-hangzhou",
		Bucket:     "lab",
	}, file.ProviderMetadata)
	require.Equal(t, []byte("png"), store.objects["strapi/abc.png"])
}

func TestUploadRewritesBaseURL(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi", BaseURL: "https://cdn.lab.example/"}, store, nil)

	file := &File{Hash: "abc", Ext: ".jpg", Buffer: []byte("jpg")}
	require.NoError(t, p.Upload(context.Background(), file))
	require.True(t, strings.HasPrefix(file.URL, "https://cdn.lab.example/"))
	require.Equal(t, "https://cdn.lab.example/strapi/abc.jpg", file.URL)
}

func TestUploadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi"}, store, nil)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			file := &File{Hash: "same", Ext: ".png", Buffer: []byte("content")}
			errs[i] = p.Upload(context.Background(), file)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 4, store.puts)
	require.Len(t, store.objects, 1)
	require.Equal(t, []byte("content"), store.objects["strapi/same.png"])
}

func TestUploadStreamBuffersContent(t *testing.T) {
	store := newFakeStore()
	p := New(Config{}, store, nil)

	file := &File{Hash: "s", Ext: ".txt", Stream: strings.NewReader("streamed")}
	require.NoError(t, p.UploadStream(context.Background(), file))
	require.Equal(t, []byte("streamed"), store.objects["s.txt"])
}

func TestUploadStreamRespectsSizeLimit(t *testing.T) {
	store := newFakeStore()
	p := New(Config{SizeLimit: 4}, store, nil)

	file := &File{Hash: "big", Ext: ".bin", Stream: strings.NewReader("too large")}
	require.ErrorIs(t, p.Upload(context.Background(), file), ErrTooLarge)
	require.Zero(t, store.puts)
}

func TestUploadWithoutContentFailsBeforeNetwork(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi"}, store, nil)

	err := p.Upload(context.Background(), &File{Hash: "abc", Ext: ".png"})
	require.ErrorIs(t, err, ErrNoContent)
	require.Zero(t, store.puts)
}

func TestUploadPropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("InvalidAccessKeyId")
	p := New(Config{}, store, nil)

	file := &File{Hash: "abc", Ext: ".png", Buffer: []byte("x")}
	err := p.Upload(context.Background(), file)
	require.ErrorIs(t, err, store.putErr)
	require.Equal(t, 1, store.puts)
	require.Empty(t, file.URL)
}

func TestDeleteMissingObjectLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi"}, store, zap.New(core))

	require.NoError(t, p.Delete(context.Background(), &File{Hash: "gone", Ext: ".png"}))
	require.Equal(t, 1, logs.FilterMessage("delete returned non-2xx status").Len())
}

func TestDeleteRemovesObject(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi"}, store, nil)
	file := &File{Hash: "abc", Ext: ".png", Buffer: []byte("x")}
	require.NoError(t, p.Upload(context.Background(), file))

	require.NoError(t, p.Delete(context.Background(), file))
	require.Empty(t, store.objects)
}

func TestDeletePropagatesTransportError(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("dial tcp: connection refused")
	p := New(Config{}, store, nil)

	require.ErrorIs(t, p.Delete(context.Background(), &File{Hash: "abc", Ext: ".png"}), store.deleteErr)
}

func TestIsPrivate(t *testing.T) {
	require.True(t, New(Config{ACL: "private"}, newFakeStore(), nil).IsPrivate())
	require.False(t, New(Config{ACL: "public-read"}, newFakeStore(), nil).IsPrivate())
	require.False(t, New(Config{}, newFakeStore(), nil).IsPrivate())
}

func TestGetSignedURL(t *testing.T) {
	store := newFakeStore()
	p := New(Config{UploadPath: "strapi", ACL: "private"}, store, nil)

	signed, err := p.GetSignedURL(context.Background(), &File{Hash: "abc", Ext: ".png"})
	require.NoError(t, err)
	require.Equal(t, "https://signed.example/strapi/abc.png?Expires=x", signed.URL)
	require.Equal(t, DefaultSignedURLExpiry, store.lastSign)

	custom := New(Config{SignedURLExpiry: time.Hour}, store, nil)
	_, err = custom.GetSignedURL(context.Background(), &File{Hash: "abc", Ext: ".png"})
	require.NoError(t, err)
	require.Equal(t, time.Hour, store.lastSign)

	store.signErr = errors.New("bad credentials")
	_, err = p.GetSignedURL(context.Background(), &File{Hash: "abc", Ext: ".png"})
	require.ErrorIs(t, err, store.signErr)
}
