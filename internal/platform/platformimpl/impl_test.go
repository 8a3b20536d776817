package platformimpl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kcgrab/kcgrab/internal/domain"
	apperrors "github.com/kcgrab/kcgrab/pkg/errors"
	"github.com/kcgrab/kcgrab/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *PlatformImpl {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &PlatformImpl{
		http: server.Client(),
		baseURLs: map[domain.Platform]string{
			domain.PlatformKemono: server.URL,
		},
		logger: logger.New(logger.Opts{}),
	}
}

func TestGetPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patreon/user/9919437/post/103396563", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"post": {
				"id": "103396563",
				"user": "9919437",
				"service": "patreon",
				"title": "Sketch pack",
				"content": "<p>Hello <a href=\"https://example.com\">there</a></p>",
				"embed": {"subject": "Preview", "url": "https://youtu.be/abc"},
				"file": {"name": "cover.png", "path": "/aa/bb/cover.png"},
				"attachments": [{"name": "page1.png", "path": "/cc/dd/page1.png"}]
			},
			"attachments": [
				{"name": "cover.png", "path": "/aa/bb/cover.png", "server": "https://n1.kemono.su"},
				{"name": "page1.png", "path": "/cc/dd/page1.png", "server": "https://n2.kemono.su"}
			],
			"previews": [],
			"videos": []
		}`)
	})

	client := newTestClient(t, mux)

	ref := domain.PostReference{
		Platform: domain.PlatformKemono,
		Service:  "patreon",
		UserID:   "9919437",
		PostID:   "103396563",
	}
	record, err := client.GetPost(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, "Sketch pack", record.Title)
	assert.False(t, record.IsEmpty())
	require.Len(t, record.Embeds, 1)
	assert.Equal(t, "Preview", record.Embeds[0].Label)

	require.Len(t, record.Attachments, 2)
	assert.Equal(t, "cover.png", record.Attachments[0].Filename)
	assert.Equal(t, "https://n1.kemono.su/data/aa/bb/cover.png?f=cover", record.Attachments[0].URL)
	assert.Equal(t, "https://n2.kemono.su/data/cc/dd/page1.png?f=page1", record.Attachments[1].URL)
}

func TestGetPostDeduplicatesInlineFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patreon/user/1/post/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"post": {
				"id": "2", "user": "1", "service": "patreon", "title": "t", "content": "",
				"file": {"name": "a.png", "path": "/x/a.png"},
				"attachments": [{"name": "a.png", "path": "/x/a.png"}]
			},
			"attachments": [{"name": "a.png", "path": "/x/a.png", "server": "https://n1.kemono.su"}]
		}`)
	})

	client := newTestClient(t, mux)

	record, err := client.GetPost(context.Background(), domain.PostReference{
		Platform: domain.PlatformKemono, Service: "patreon", UserID: "1", PostID: "2",
	})
	require.NoError(t, err)
	assert.Len(t, record.Attachments, 1)
}

func TestGetPostErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, apperrors.ErrPostNotFound},
		{"rate limited", http.StatusTooManyRequests, apperrors.ErrRateLimited},
		{"forbidden maps to rate limited", http.StatusForbidden, apperrors.ErrRateLimited},
		{"server error", http.StatusBadGateway, apperrors.ErrTransientNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.GetPost(context.Background(), domain.PostReference{
				Platform: domain.PlatformKemono, Service: "patreon", UserID: "1", PostID: "2",
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patreon/user/9919437/profile", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "9919437", "name": "SomeArtist", "service": "patreon", "post_count": 120}`)
	})

	client := newTestClient(t, mux)

	profile, err := client.GetProfile(context.Background(), domain.ProfileReference{
		Platform: domain.PlatformKemono, Service: "patreon", UserID: "9919437",
	})
	require.NoError(t, err)
	assert.Equal(t, "SomeArtist", profile.Name)
	assert.Equal(t, 120, profile.PostCount)
}

func TestListPage(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patreon/user/9919437/posts", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `[{"id": "30", "title": "a"}, {"id": "29", "title": "b"}]`)
	})

	client := newTestClient(t, mux)

	ref := domain.ProfileReference{Platform: domain.PlatformKemono, Service: "patreon", UserID: "9919437"}

	entries, err := client.ListPage(context.Background(), ref, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "30", entries[0].PostID)
	assert.Empty(t, gotQuery)

	_, err = client.ListPage(context.Background(), ref, 50)
	require.NoError(t, err)
	assert.Equal(t, "o=50", gotQuery)
}
