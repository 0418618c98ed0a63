// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts announcement Markdown into HTML using goldmark.
// Raw HTML in the source is not rendered.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks
		extension.Typographer, // Smart quotes and dashes
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Inline renders source and strips a single wrapping paragraph, for
// one-line content such as the announcement banner. goldmark escapes
// untrusted input, so the result is safe to embed.
func Inline(source string) template.HTML {
	out, err := ToHTML(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	out = strings.TrimSpace(out)
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}
