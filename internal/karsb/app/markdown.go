package app

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// markdownToHTML converts the Markdown subset used in replies into Matrix
// HTML: fenced code blocks, inline code, bold and line breaks. Text is
// escaped first since replies echo player names from the datasets.
func markdownToHTML(md string) string {
	var out strings.Builder
	inCode := false
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "```") {
			if inCode {
				out.WriteString("</code></pre>")
			} else {
				out.WriteString("<pre><code>")
			}
			inCode = !inCode
			continue
		}
		out.WriteString(htmlEscaper.Replace(line))
		out.WriteString("\n")
	}
	result := strings.TrimSuffix(out.String(), "\n")

	result = replaceDelimited(result, "`", "<code>", "</code>")
	result = replaceDelimited(result, "**", "<strong>", "</strong>")
	return strings.ReplaceAll(result, "\n", "<br/>")
}

// replaceDelimited wraps complete delim pairs in open/close. An unmatched
// opener is left as-is.
func replaceDelimited(s, delim, open, close string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, delim)
		if start == -1 {
			break
		}
		end := strings.Index(s[start+len(delim):], delim)
		if end == -1 {
			break
		}
		end += start + len(delim)
		b.WriteString(s[:start])
		b.WriteString(open)
		b.WriteString(s[start+len(delim) : end])
		b.WriteString(close)
		s = s[end+len(delim):]
	}
	b.WriteString(s)
	return b.String()
}
