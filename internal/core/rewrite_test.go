package core

import (
	"strings"
	"testing"
)

func TestReplaceURLVariants(t *testing.T) {
	oldURL := "https://cdn.example.com/files/photo.jpg"
	newURL := "https://mysite.example.com/assets/2020/01/photo.jpg"

	t.Run("exact form", func(t *testing.T) {
		content := `<img src="https://cdn.example.com/files/photo.jpg">`
		got := ReplaceURLVariants(content, oldURL, newURL)
		want := `<img src="https://mysite.example.com/assets/2020/01/photo.jpg">`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("protocol-relative form", func(t *testing.T) {
		content := `<img src="//cdn.example.com/files/photo.jpg">`
		got := ReplaceURLVariants(content, oldURL, newURL)
		want := `<img src="//mysite.example.com/assets/2020/01/photo.jpg">`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("entity-encoded ampersands", func(t *testing.T) {
		old := "https://cdn.example.com/get?id=1&size=large"
		new := "https://mysite.example.com/assets/2020/01/get.jpg"
		content := `<a href="https://cdn.example.com/get?id=1&amp;size=large">file</a>`
		got := ReplaceURLVariants(content, old, new)
		if !strings.Contains(got, "https://mysite.example.com/assets/2020/01/get.jpg") {
			t.Errorf("entity-encoded occurrence not replaced: %q", got)
		}
	})

	t.Run("percent-decoded form", func(t *testing.T) {
		old := "https://cdn.example.com/files/caf%C3%A9.jpg"
		new := "https://mysite.example.com/assets/2020/01/cafe.jpg"
		content := `see https://cdn.example.com/files/café.jpg here`
		got := ReplaceURLVariants(content, old, new)
		want := `see https://mysite.example.com/assets/2020/01/cafe.jpg here`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("percent-encoded path form", func(t *testing.T) {
		old := "https://cdn.example.com/my files/photo.jpg"
		new := "https://mysite.example.com/assets/2020/01/photo.jpg"
		content := `see https://cdn.example.com/my%20files/photo.jpg here`
		got := ReplaceURLVariants(content, old, new)
		want := `see https://mysite.example.com/assets/2020/01/photo.jpg here`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("all variants in one document", func(t *testing.T) {
		content := strings.Join([]string{
			`<img src="https://cdn.example.com/files/photo.jpg">`,
			`<img src="//cdn.example.com/files/photo.jpg">`,
			`plain https://cdn.example.com/files/photo.jpg text`,
		}, "\n")
		got := ReplaceURLVariants(content, oldURL, newURL)
		if strings.Contains(got, "cdn.example.com") {
			t.Errorf("old host survived replacement: %q", got)
		}
		if !strings.Contains(got, `src="//mysite.example.com/assets/2020/01/photo.jpg"`) {
			t.Errorf("protocol-relative occurrence not kept protocol-relative: %q", got)
		}
	})

	t.Run("unrelated URLs untouched", func(t *testing.T) {
		content := `<img src="https://cdn.example.com/files/other.jpg">`
		got := ReplaceURLVariants(content, oldURL, newURL)
		if got != content {
			t.Errorf("unrelated URL changed: %q", got)
		}
	})

	t.Run("empty old URL is a no-op", func(t *testing.T) {
		content := "anything"
		if got := ReplaceURLVariants(content, "", "x"); got != content {
			t.Errorf("got %q, want %q", got, content)
		}
	})

	t.Run("idempotent once replaced", func(t *testing.T) {
		content := `<img src="https://cdn.example.com/files/photo.jpg">`
		once := ReplaceURLVariants(content, oldURL, newURL)
		twice := ReplaceURLVariants(once, oldURL, newURL)
		if once != twice {
			t.Errorf("second pass changed content: %q vs %q", once, twice)
		}
	})
}
