package search_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/29next/devdocs/document"
	"github.com/29next/devdocs/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteDomain = "https://developers.29next.com"

const adminAPI = `openapi: 3.1.0
info:
  version: "2024-04-01"
paths:
  /products/:
    get:
      operationId: productsList
      tags: [products]
      description: Retrieve a list of products.
  /orders/:
    parameters: []
    post:
      operationId: ordersCreate
      tags: [orders]
      description: Create an order with <b>bold</b> text.
    get:
      operationId: ordersList
      tags: [orders]
      description: Retrieve a list of orders.
webhooks:
  order.created:
    post:
      tags: [orders]
      description: Triggers when an new order is created.
  cart.abandoned:
    post:
      tags: [carts]
      description: Triggers when a cart is marked as abandoned.
`

func loadDocument(t *testing.T) *document.Document {
	t.Helper()

	doc, err := document.Unmarshal(t.Context(), strings.NewReader(adminAPI))
	require.NoError(t, err)
	return doc
}

func TestOperations_Success(t *testing.T) {
	t.Parallel()

	records := search.Operations(siteDomain, "admin", "Admin API", "2024-04-01", loadDocument(t))
	require.Len(t, records, 3)

	r := records[0]
	assert.Equal(t, "admin-productsList", r.ObjectID)
	assert.Equal(t, "productsList", r.Name)
	assert.Equal(t, "Retrieve a list of products.", r.Content)
	assert.Equal(t, "Admin API", r.Category)
	assert.Equal(t, "/docs/api/admin/redirect/?v=2024-04-01#/operations/productsList", r.Anchor)
	assert.Equal(t, siteDomain+r.Anchor, r.URL)
	assert.Equal(t, r.URL, r.URLWithoutAnchor)
	assert.Equal(t, search.Hierarchy{
		Lvl0: "Documentation",
		Lvl1: "Admin API",
		Lvl2: "products",
		Lvl3: "productsList",
		Lvl4: "Retrieve a list of products.",
	}, r.Hierarchy)
	assert.Equal(t, []search.Hierarchy{r.Hierarchy}, r.HierarchyCamel)

	assert.Equal(t, "ordersCreate", records[1].Name)
	assert.Equal(t, "ordersList", records[2].Name)
}

func TestWebhooks_Success(t *testing.T) {
	t.Parallel()

	records := search.Webhooks(siteDomain, "admin", "2024-04-01", loadDocument(t))
	require.Len(t, records, 2)

	assert.Equal(t, "admin-order.created", records[0].ObjectID)
	assert.Equal(t, "Webhooks", records[0].Category)
	assert.Equal(t, "orders", records[0].Hierarchy.Lvl2)
	assert.Equal(t, "/docs/api/admin/redirect/?v=2024-04-01#/webhooks/order.created/post", records[0].Anchor)
	assert.Equal(t, "cart.abandoned", records[1].Name)
}

func TestSort_Success(t *testing.T) {
	t.Parallel()

	doc := loadDocument(t)
	records := append(
		search.Webhooks(siteDomain, "admin", "2024-04-01", doc),
		search.Operations(siteDomain, "admin", "Admin API", "2024-04-01", doc)...,
	)
	search.Sort(records)

	var names []string
	for _, r := range records {
		names = append(names, r.Hierarchy.Lvl1+"/"+r.Hierarchy.Lvl2+"/"+r.Name)
	}
	assert.Equal(t, []string{
		"Admin API/orders/ordersCreate",
		"Admin API/orders/ordersList",
		"Admin API/products/productsList",
		"Webhooks/carts/cart.abandoned",
		"Webhooks/orders/order.created",
	}, names)
}

func TestRenderHTML_Success(t *testing.T) {
	t.Parallel()

	doc := loadDocument(t)
	records := append(
		search.Operations(siteDomain, "admin", "Admin API", "2024-04-01", doc),
		search.Webhooks(siteDomain, "admin", "2024-04-01", doc)...,
	)
	search.Sort(records)

	var buf bytes.Buffer
	require.NoError(t, search.RenderHTML(&buf, records))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n"))
	assert.Equal(t, 1, strings.Count(out, "<h2>Admin API</h2>"))
	assert.Equal(t, 1, strings.Count(out, "<h2>Webhooks</h2>"))
	assert.Equal(t, 2, strings.Count(out, "<h3>orders</h3>"), "one orders group per category")
	assert.Equal(t, 5, strings.Count(out, "<article id="))
	assert.Contains(t, out, "<article id='admin-ordersList'>")
	assert.Contains(t, out, "content='docs-default-current'")
	assert.Contains(t, out, "Create an order with &lt;b&gt;bold&lt;/b&gt; text.")
	assert.Less(t, strings.Index(out, "<h2>Admin API</h2>"), strings.Index(out, "<h2>Webhooks</h2>"))
}

func TestRenderHTML_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, search.RenderHTML(&buf, nil))
	assert.NotContains(t, buf.String(), "<h2>")
	assert.Contains(t, buf.String(), "</html>")
}

func TestWriteJSON_Success(t *testing.T) {
	t.Parallel()

	records := search.Operations(siteDomain, "admin", "Admin API", "2024-04-01", loadDocument(t))

	var buf bytes.Buffer
	require.NoError(t, search.WriteJSON(&buf, records[:1]))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	assert.Equal(t, "admin-productsList", decoded[0]["objectID"])
	assert.Equal(t, "lvl4", decoded[0]["type"])
	hierarchy, ok := decoded[0]["hierarchy"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, hierarchy, "lvl5")
	assert.Nil(t, hierarchy["lvl5"])
	assert.Contains(t, buf.String(), "?v=2024-04-01#/operations/productsList")
}

func TestWriteJSON_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, search.WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
