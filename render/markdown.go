/*
Copyright 2026 The Corvid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package render converts text/markdown post source to HTML and
// sanitises the HTML stored as content and sent over the wire. There is
// no HTML-to-Markdown direction.
//
// No Markdown or HTML-sanitisation library appears among the retrieved
// dependencies of any example repository, so both are hand-rolled: the
// Markdown renderer on the standard library's html escaping and regexp,
// the sanitiser on golang.org/x/net/html, which every retrieved
// repository that touches HTML already depends on.
package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRegex    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicRegex  = regexp.MustCompile(`\*([^*\n]+)\*`)
	linkRegex    = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	bareURLRegex = regexp.MustCompile(`\b(https?://[^\s<]+)\b`)
)

// FromMarkdown renders Markdown source to a restricted HTML subset: one
// <p> per blank-line-delimited block, <br> for single line breaks,
// <b>/<i>/<a> inline. name, if non-empty, is prefixed as a link back to
// id, the convention for rendering a reply/boost's subject line.
func FromMarkdown(source, name, id string) string {
	var b strings.Builder

	if name != "" {
		b.WriteString(`<p><a href="`)
		b.WriteString(html.EscapeString(id))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(name))
		b.WriteString("</a></p>")
	}

	for _, block := range strings.Split(strings.TrimSpace(source), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(inlineHTML(block))
		b.WriteString("</p>")
	}

	return b.String()
}

// anchorPlaceholder marks an already-built <a> so the bare-URL pass
// doesn't wrap its href a second time; it's substituted back in last.
const anchorPlaceholder = "\x00"

func inlineHTML(block string) string {
	escaped := html.EscapeString(block)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")

	var anchors []string
	escaped = linkRegex.ReplaceAllStringFunc(escaped, func(m string) string {
		parts := linkRegex.FindStringSubmatch(m)
		anchors = append(anchors, `<a href="`+parts[2]+`">`+parts[1]+`</a>`)
		return anchorPlaceholder + string(rune(len(anchors)-1)) + anchorPlaceholder
	})

	escaped = bareURLRegex.ReplaceAllStringFunc(escaped, func(m string) string {
		return `<a href="` + m + `">` + m + `</a>`
	})

	escaped = boldRegex.ReplaceAllString(escaped, `<b>$1</b>`)
	escaped = italicRegex.ReplaceAllString(escaped, `<i>$1</i>`)

	for i, a := range anchors {
		escaped = strings.ReplaceAll(escaped, anchorPlaceholder+string(rune(i))+anchorPlaceholder, a)
	}

	return escaped
}
