package infrastructure

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
@page { size: A4; margin: 18mm 16mm; }
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10.5pt; line-height: 1.45; color: #1f2328; }
h1 { font-size: 20pt; margin: 0 0 4pt; }
h2 { font-size: 12.5pt; margin: 14pt 0 4pt; border-bottom: 1px solid #d0d7de; padding-bottom: 2pt; }
h3 { font-size: 11pt; margin: 10pt 0 2pt; }
ul { margin: 2pt 0 6pt 14pt; padding: 0; }
a { color: #0969da; text-decoration: none; }
</style>
</head>
<body>
%s
</body>
</html>`

// MarkdownToHTML renders CV markdown into a standalone, print-ready HTML
// document.
func MarkdownToHTML(title, source string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return "", err
	}
	return fmt.Sprintf(documentShell, html.EscapeString(title), body.String()), nil
}
