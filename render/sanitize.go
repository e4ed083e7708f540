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

package render

import (
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"p": true, "br": true, "b": true, "i": true, "strong": true,
	"em": true, "a": true, "ul": true, "ol": true, "li": true,
	"blockquote": true, "code": true, "pre": true, "span": true,
}

var allowedAttrs = map[string]map[string]bool{
	"a": {"href": true, "rel": true},
}

// Sanitize strips any tag not in allowedTags (scripts, styles, iframes,
// forms, media embeds) and any attribute not in allowedAttrs (event
// handlers, style, src), keeping the text content of stripped tags
// except script and style, whose content is dropped with them.
func Sanitize(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	var skipDepth int

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return b.String()
		}

		token := tokenizer.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if !allowedTags[token.Data] {
				if tt == html.StartTagToken && (token.Data == "script" || token.Data == "style") {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			b.WriteString("<")
			b.WriteString(token.Data)
			for _, attr := range token.Attr {
				if allowedAttrs[token.Data][attr.Key] {
					b.WriteString(" ")
					b.WriteString(attr.Key)
					b.WriteString(`="`)
					b.WriteString(html.EscapeString(attr.Val))
					b.WriteString(`"`)
				}
			}
			if tt == html.SelfClosingTagToken {
				b.WriteString("/")
			}
			b.WriteString(">")

		case html.EndTagToken:
			if !allowedTags[token.Data] {
				if skipDepth > 0 && (token.Data == "script" || token.Data == "style") {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			b.WriteString("</")
			b.WriteString(token.Data)
			b.WriteString(">")

		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(html.EscapeString(token.Data))
			}
		}
	}
}
