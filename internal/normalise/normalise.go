// Package normalise cleans scraped article content before it enters
// the store. Regulator sites deliver anything from clean text to raw
// HTML fragments; everything is reduced to plain paragraphs separated
// by blank lines, which is the structure the chunker splits on.
package normalise

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	anyTag            = regexp.MustCompile(`(?i)<(p|div|br|span|a|h[1-6]|li|ul|ol|table|strong|em|b|i)[\s>/]`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
	multiNewlines     = regexp.MustCompile(`\n{3,}`)
)

// Clean normalises scraped content to plain paragraph text. HTML
// fragments are stripped; plain text only gets its whitespace
// tidied. Paragraph breaks come out as exactly one blank line.
func Clean(content string) string {
	if looksLikeHTML(content) {
		content = stripHTML(content)
	}
	return tidyWhitespace(content)
}

// looksLikeHTML reports whether the content carries HTML markup worth
// stripping. A lone angle bracket in prose does not count.
func looksLikeHTML(content string) bool {
	return anyTag.MatchString(content)
}

// stripHTML removes markup and turns block boundaries into paragraph
// breaks.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become paragraph breaks, line breaks stay
	// single newlines.
	content = openBlockElements.ReplaceAllString(content, "\n\n")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n\n")

	content = allTags.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

// tidyWhitespace collapses runs of spaces, trims every line and
// reduces runs of blank lines to a single paragraph break.
func tidyWhitespace(content string) string {
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")

	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
