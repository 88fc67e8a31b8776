// Package search builds the documentation search index from published API descriptions.
//
// Records follow the layout the docusaurus search crawler produces, so hand built records
// rank and render like crawled pages.
package search

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/29next/devdocs/document"
)

const (
	DocusaurusTag   = "docs-default-current"
	RootHierarchy   = "Documentation"
	WebhookCategory = "Webhooks"
)

// Hierarchy is the lvl0..lvl6 breadcrumb of a record. Unused levels are null.
type Hierarchy struct {
	Lvl0 string  `json:"lvl0"`
	Lvl1 string  `json:"lvl1"`
	Lvl2 string  `json:"lvl2"`
	Lvl3 string  `json:"lvl3"`
	Lvl4 string  `json:"lvl4"`
	Lvl5 *string `json:"lvl5"`
	Lvl6 *string `json:"lvl6"`
}

type Weight struct {
	PageRank int `json:"page_rank"`
	Level    int `json:"level"`
	Position int `json:"position"`
}

// Record is one searchable operation or webhook.
type Record struct {
	ObjectID            string      `json:"objectID"`
	Name                string      `json:"name"`
	Content             string      `json:"content"`
	DocusaurusTag       string      `json:"docusaurus_tag"`
	Category            string      `json:"category"`
	Language            string      `json:"language"`
	Type                string      `json:"type"`
	Anchor              string      `json:"anchor"`
	URL                 string      `json:"url"`
	URLWithoutVariables string      `json:"url_without_variables"`
	URLWithoutAnchor    string      `json:"url_without_anchor"`
	Weight              Weight      `json:"weight"`
	Hierarchy           Hierarchy   `json:"hierarchy"`
	HierarchyRadio      Hierarchy   `json:"hierarchy_radio"`
	HierarchyCamel      []Hierarchy `json:"hierarchy_camel"`
	HierarchyRadioCamel Hierarchy   `json:"hierarchy_radio_camel"`
}

// NewRecord builds the record of a single entry. category is the lvl1 heading, tag the lvl2.
func NewRecord(siteDomain, apiType, category, tag, name, description, anchor string) Record {
	url := siteDomain + anchor
	hierarchy := Hierarchy{
		Lvl0: RootHierarchy,
		Lvl1: category,
		Lvl2: tag,
		Lvl3: name,
		Lvl4: description,
	}

	return Record{
		ObjectID:            apiType + "-" + name,
		Name:                name,
		Content:             description,
		DocusaurusTag:       DocusaurusTag,
		Category:            category,
		Language:            "en",
		Type:                "lvl4",
		Anchor:              anchor,
		URL:                 url,
		URLWithoutVariables: url,
		URLWithoutAnchor:    url,
		Weight:              Weight{PageRank: 100, Level: 100, Position: 1},
		Hierarchy:           hierarchy,
		HierarchyRadio:      hierarchy,
		HierarchyCamel:      []Hierarchy{hierarchy},
		HierarchyRadioCamel: hierarchy,
	}
}

// Operations returns a record per operation of doc. Anchors go through the docs redirect
// page so the API reference picks up the version.
func Operations(siteDomain, apiType, title, version string, doc *document.Document) []Record {
	var records []Record
	for op := range doc.Operations() {
		anchor := fmt.Sprintf("/docs/api/%s/redirect/?v=%s#/operations/%s", apiType, version, op.OperationID)
		records = append(records, NewRecord(siteDomain, apiType, title, op.Tag, op.OperationID, op.Description, anchor))
	}
	return records
}

// Webhooks returns a record per webhook of doc, filed under the Webhooks category.
func Webhooks(siteDomain, apiType, version string, doc *document.Document) []Record {
	var records []Record
	for op := range doc.Webhooks() {
		anchor := fmt.Sprintf("/docs/api/%s/redirect/?v=%s#/webhooks/%s/%s", apiType, version, op.Path, op.Method)
		records = append(records, NewRecord(siteDomain, apiType, WebhookCategory, op.Tag, op.Path, op.Description, anchor))
	}
	return records
}

// Sort orders records by category, tag then name.
func Sort(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Hierarchy.Lvl1, b.Hierarchy.Lvl1),
			cmp.Compare(a.Hierarchy.Lvl2, b.Hierarchy.Lvl2),
			cmp.Compare(a.Hierarchy.Lvl3, b.Hierarchy.Lvl3),
		)
	})
}
