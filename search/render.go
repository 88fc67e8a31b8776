package search

import (
	"encoding/json"
	"html/template"
	"io"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang='en'>
<head>
  <meta charset='utf-8'/>
  <title>API Search Index</title>
  <meta name='description' content='Generated endpoints from OpenAPI specs and webhooks.'/>
  <meta name='docsearch:docusaurus_tag' content='{{ .Tag }}'/>
</head>
<body>
  <main>
    <header>
      <h1>API Documentation</h1>
    </header>
{{- range .Sections }}
    <h2>{{ .Title }}</h2>
{{- range .Groups }}
    <h3>{{ .Tag }}</h3>
{{- range .Records }}
    <article id='{{ .ObjectID }}'>
      <h4 class='anchor'><a href='{{ .URL }}'>{{ .Hierarchy.Lvl3 }}</a></h4>
      <p class='content'>{{ .Content }}</p>
    </article>
{{- end }}
{{- end }}
{{- end }}
  </main>
</body>
</html>
`))

type section struct {
	Title  string
	Groups []group
}

type group struct {
	Tag     string
	Records []Record
}

// RenderHTML writes the static index page the search crawler reads: an h2 per category,
// an h3 per tag and an article per record. records must already be sorted (see Sort).
func RenderHTML(w io.Writer, records []Record) error {
	return indexTemplate.Execute(w, struct {
		Tag      string
		Sections []section
	}{
		Tag:      DocusaurusTag,
		Sections: sections(records),
	})
}

// sections groups consecutive records sharing a category, then a tag.
func sections(records []Record) []section {
	var out []section

	for _, r := range records {
		if len(out) == 0 || out[len(out)-1].Title != r.Hierarchy.Lvl1 {
			out = append(out, section{Title: r.Hierarchy.Lvl1})
		}
		s := &out[len(out)-1]

		if len(s.Groups) == 0 || s.Groups[len(s.Groups)-1].Tag != r.Hierarchy.Lvl2 {
			s.Groups = append(s.Groups, group{Tag: r.Hierarchy.Lvl2})
		}
		g := &s.Groups[len(s.Groups)-1]

		g.Records = append(g.Records, r)
	}

	return out
}

// WriteJSON writes records as a JSON array, ready for upload to the search service.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	e.SetEscapeHTML(false)
	return e.Encode(records)
}
