package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripJSONFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"無圍欄", `{"a":1}`, `{"a":1}`},
		{"json 圍欄", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"純圍欄", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前後雜訊", "好的，結果如下：\n{\"a\":1}\n希望有幫助", `{"a":1}`},
		{"陣列", "```json\n[0, 3, 7]\n```", `[0, 3, 7]`},
		{"陣列帶雜訊", "indices: [1,2]", `[1,2]`},
		{"空字串", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripJSONFences(tc.in))
		})
	}
}

func TestDecodeCompletionJSON(t *testing.T) {
	var obj struct {
		Name string `json:"name"`
	}
	err := DecodeCompletionJSON("```json\n{\"name\":\"garlic\"}\n```", &obj)
	require.NoError(t, err)
	assert.Equal(t, "garlic", obj.Name)

	var arr []int
	err = DecodeCompletionJSON("```\n[0,1,2]\n```", &arr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, arr)
}

func TestDecodeCompletionJSONUnquotedKeys(t *testing.T) {
	var obj struct {
		Query string `json:"query"`
	}
	err := DecodeCompletionJSON(`{query: "vegan pasta"}`, &obj)
	require.NoError(t, err)
	assert.Equal(t, "vegan pasta", obj.Query)
}

func TestDecodeCompletionJSONMalformed(t *testing.T) {
	var obj map[string]interface{}

	err := DecodeCompletionJSON("I could not decide on any recipes.", &obj)
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	err = DecodeCompletionJSON("", &obj)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "garlic", CanonicalName("  Garlic "))
	assert.Equal(t, "olive oil", CanonicalName("Olive Oil"))
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"vegan", "vegetarian", "vegan"})
	assert.Equal(t, []string{"vegan", "vegetarian"}, got)
}
