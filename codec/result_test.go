package codec

import (
	"testing"

	"github.com/dszqbsm/scrapetree/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResult(t *testing.T) {
	root := rule.NewMapNode("root",
		rule.NewTextNode("title", "/html/head/title"),
		rule.NewStructNode("books", "//tr",
			rule.NewTextNode("title", "./td[1]"),
			rule.NewTextNode("pub_date", "./td[2]"),
		),
	)
	result := map[string]interface{}{
		"title": "Structual Text",
		"books": []interface{}{
			map[string]interface{}{"title": "The Perfect Insider", "pub_date": "1996/4/5"},
		},
	}

	out, err := EncodeResultJSON(root, result)
	require.NoError(t, err)
	assert.Equal(t, `{
  "title": "Structual Text",
  "books": [
    {
      "title": "The Perfect Insider",
      "pub_date": "1996/4/5"
    }
  ]
}
`, string(out))

	out, err = EncodeResultYAML(root, result)
	require.NoError(t, err)
	assert.Equal(t, `title: Structual Text
books:
  - title: The Perfect Insider
    pub_date: 1996/4/5
`, string(out))
}

func TestEncodeResultFlatten(t *testing.T) {
	root := rule.NewPaginateNode("root", "//a[@class='next']", []rule.Node{
		rule.NewTextNode("content", "/html/body/p"),
		rule.NewStructNode("items", "//li", rule.NewTextNode("name", "."), rule.NewTextNode("id", "@id")),
	}, rule.Flatten(true))
	result := []interface{}{
		"PaginationTest01",
		map[string]interface{}{"id": "1", "name": "Item 01-a"},
	}

	out, err := EncodeResultJSON(root, result)
	require.NoError(t, err)
	assert.JSONEq(t, `["PaginationTest01", {"name": "Item 01-a", "id": "1"}]`, string(out))
	assert.Contains(t, string(out), `"name": "Item 01-a",
    "id": "1"`)
}

func TestEncodeResultWithoutTree(t *testing.T) {
	out, err := EncodeResultJSON(nil, map[string]interface{}{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"2\"\n}\n", string(out))

	out, err = EncodeResultJSON(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "null\n", string(out))
}
