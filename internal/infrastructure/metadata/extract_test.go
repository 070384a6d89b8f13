package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractArticle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTitle  *string
		wantAuthor *string
	}{
		{
			name: "og title preferred over document title",
			body: `<html><head>
				<title>Doc Title</title>
				<meta property="og:title" content="OG Title">
			</head><body></body></html>`,
			wantTitle: strptr("OG Title"),
		},
		{
			name:      "document title fallback",
			body:      `<html><head><title>  Doc Title  </title></head><body></body></html>`,
			wantTitle: strptr("Doc Title"),
		},
		{
			name: "meta author preferred over byline element",
			body: `<html><head>
				<meta name="author" content="Meta Author">
			</head><body>
				<span class="byline">By Someone Else</span>
			</body></html>`,
			wantAuthor: strptr("Meta Author"),
		},
		{
			name: "article author meta",
			body: `<html><head>
				<meta property="article:author" content="Article Author">
			</head><body></body></html>`,
			wantAuthor: strptr("Article Author"),
		},
		{
			name: "twitter creator is the last meta fallback",
			body: `<html><head>
				<meta name="twitter:creator" content="@handle">
			</head><body></body></html>`,
			wantAuthor: strptr("@handle"),
		},
		{
			name:       "byline class with prefix stripped",
			body:       `<html><body><div class="author">By Jane Doe</div></body></html>`,
			wantAuthor: strptr("Jane Doe"),
		},
		{
			name:       "written by prefix stripped",
			body:       `<html><body><p class="post-author">Written by John Smith</p></body></html>`,
			wantAuthor: strptr("John Smith"),
		},
		{
			name:       "empty byline element ignored",
			body:       `<html><body><div class="author"></div><div class="byline">Jane</div></body></html>`,
			wantAuthor: strptr("Jane"),
		},
		{
			name: "script content not treated as byline",
			body: `<html><body><script class="author">var x = 1;</script></body></html>`,
		},
		{
			name: "nothing extractable",
			body: `<html><body><p>Just text</p></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, author := extractArticle([]byte(tt.body))
			assertPtrEqual(t, tt.wantTitle, title)
			assertPtrEqual(t, tt.wantAuthor, author)
		})
	}
}

func strptr(s string) *string { return &s }

func assertPtrEqual(t *testing.T, want, got *string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}
