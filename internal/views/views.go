// Package views holds the embedded HTML templates of the microblog and the helpers they use.
package views

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"microblog/internal/schemas"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page and partial into one template set for gin.Engine.SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"avatar": func(user *schemas.User, size int) string {
			if user == nil {
				return ""
			}
			return user.Avatar(size)
		},
		"timeago": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return humanize.Time(t)
		},
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
		"translatable": Translatable,
		"postview": func(post *schemas.Post, locale string) PostView {
			return PostView{Post: post, Locale: locale}
		},
		"pageurl": func(path string, page int) string {
			return path + "?page=" + strconv.Itoa(page)
		},
	}
}

// PostView is what the post partial renders: one post and the locale of the reader.
type PostView struct {
	Post   *schemas.Post
	Locale string
}

// Translatable reports whether a post gets a translate link for a reader using locale.
func Translatable(post *schemas.Post, locale string) bool {
	return post != nil && post.Language != "" && locale != "" && post.Language != locale
}
