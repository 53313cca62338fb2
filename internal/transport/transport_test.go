package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("#EXTM3U"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.Client(), "PopcornPlayer/test", nil)
	body, err := c.Get(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "#EXTM3U" {
		t.Errorf("body = %q", body)
	}
	if gotUA != "PopcornPlayer/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	_, err = c.Get(context.Background(), srv.URL+"/missing?username=u&password=secret")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound || fe.Unreachable() {
		t.Errorf("StatusCode = %d", fe.StatusCode)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks password: %v", err)
	}
}

func TestGetUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(nil, "", nil).Get(context.Background(), url+"/live/user/secret/1.ts")
	var fe *FetchError
	if !errors.As(err, &fe) || !fe.Unreachable() {
		t.Fatalf("err = %v, want unreachable FetchError", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks password: %v", err)
	}
}

func TestGetCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.Client(), "", nil).Get(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !IsFetchError(err) {
		t.Errorf("err = %v, want FetchError", err)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://h/list.m3u", "http://h/list.m3u"},
		{"http://h/get.php?username=u&password=p&type=m3u_plus", "http://h/get.php?password=REDACTED&type=m3u_plus&username=REDACTED"},
		{"http://h:8080/live/u/p/1.ts", "http://h:8080/live/REDACTED/REDACTED/1.ts"},
		{"http://h/movie/u/p/9.mp4", "http://h/movie/REDACTED/REDACTED/9.mp4"},
		{"http://user:pw@h/x.m3u", "http://user:REDACTED@h/x.m3u"},
		{"http://h/videos/a/b/c.mp4", "http://h/videos/a/b/c.mp4"},
		{"://bad", "<invalid url>"},
	}
	for _, tt := range tests {
		if got := Redact(tt.in); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{URL: "http://h", StatusCode: 502}
	if err.Error() != "fetch http://h: HTTP 502" {
		t.Errorf("Error() = %q", err.Error())
	}
	inner := errors.New("connection refused")
	err = &FetchError{URL: "http://h", Err: inner}
	if err.Error() != "fetch http://h: connection refused" || !errors.Is(err, inner) {
		t.Errorf("Error() = %q", err.Error())
	}
}
