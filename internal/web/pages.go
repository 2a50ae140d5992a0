package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Static public pages. The assistant frontend proper is served separately;
// these cover the landing, about, and contact URLs plus their legacy .html
// aliases.

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body{font-family:system-ui,sans-serif;max-width:720px;margin:3rem auto;padding:0 1rem;color:#1a2433}
h1{color:#123a6b}
a{color:#1d5fa8}
</style>
</head>
<body>
%s
</body>
</html>`

type page struct {
	title string
	body  string
}

var pages = map[string]page{
	"home": {
		title: "Haawall | University of Sulaimani Assistant",
		body: `<h1>Haawall</h1>
<p>Haawall is the University of Sulaimani's virtual assistant. Ask about
admissions, departments, fees, and campus life in English or Kurdish Sorani.</p>
<p><a href="/about">About</a> · <a href="/contact">Contact</a></p>`,
	},
	"about": {
		title: "About Haawall",
		body: `<h1>About</h1>
<p>Haawall answers questions about the University of Sulaimani using the
university's own information sources. Answers adapt to the question: quick
greetings get quick replies, detailed questions get detailed ones.</p>
<p><a href="/">Home</a></p>`,
	},
	"contact": {
		title: "Contact | Haawall",
		body: `<h1>Contact</h1>
<p>Found a wrong answer or have a suggestion? Send feedback through the
assistant, or reach the University of Sulaimani through its official
channels.</p>
<p><a href="/">Home</a></p>`,
	},
}

// Page serves one of the static public pages.
func Page(name string) gin.HandlerFunc {
	p := pages[name]
	html := []byte(renderPage(p))
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	}
}

// RedirectTo returns a permanent redirect handler for legacy .html paths.
func RedirectTo(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, target)
	}
}

func renderPage(p page) string {
	return fmt.Sprintf(pageShell, p.title, p.body)
}
