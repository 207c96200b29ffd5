package jira_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		kind  jira.Kind
	}{
		{`null`, jira.KindNull},
		{`true`, jira.KindBool},
		{`12`, jira.KindNumber},
		{`"x"`, jira.KindString},
		{`[1,2]`, jira.KindArray},
		{`{"a":1}`, jira.KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			value, err := jira.ParseValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, value.Kind())
			assert.True(t, value.Exists())
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	t.Parallel()

	_, err := jira.ParseValue([]byte(`{"a":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON value")
}

func TestValue_LargeIdentifiersKeepPrecision(t *testing.T) {
	t.Parallel()

	value, err := jira.ParseValue([]byte(`{"id": 9007199254740993}`))
	require.NoError(t, err)

	record, _ := value.Object()
	assert.Equal(t, "9007199254740993", record.Get("id").Text())

	id, ok := record.Get("id").Int()
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), id)
}

func TestValue_ZeroIsUndefined(t *testing.T) {
	t.Parallel()

	var value jira.Value

	assert.False(t, value.Exists())
	assert.True(t, value.IsEmpty())
	assert.Equal(t, jira.KindUndefined, value.Kind())
	assert.Empty(t, value.Text())

	data, err := json.Marshal(value)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(data))
}

func TestValue_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, jira.NullValue().IsEmpty())
	assert.True(t, jira.BoolValue(false).IsEmpty())
	assert.True(t, jira.StringValue("").IsEmpty())
	assert.True(t, jira.ArrayValue(nil).IsEmpty())
	assert.True(t, jira.ObjectValue(jira.Payload{}).IsEmpty())
	assert.False(t, jira.IntValue(0).IsEmpty())
	assert.False(t, jira.StringValue("a").IsEmpty())
}

func TestValue_IntFromString(t *testing.T) {
	t.Parallel()

	i, ok := jira.StringValue("10042").Int()
	require.True(t, ok)
	assert.Equal(t, int64(10042), i)

	_, ok = jira.StringValue("ABC").Int()
	assert.False(t, ok)

	_, ok = jira.BoolValue(true).Int()
	assert.False(t, ok)
}

func TestValue_RoundTripsUnknownKeys(t *testing.T) {
	t.Parallel()

	input := `{"a":[1,"two",{"three":null}],"b":{"c":true},"d":1.5}`

	value, err := jira.ParseValue([]byte(input))
	require.NoError(t, err)

	out, err := json.Marshal(value)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))

	record, _ := value.Object()
	assert.JSONEq(t, `{"c":true}`, record.Get("b").Text())
}

func TestFromInterface(t *testing.T) {
	t.Parallel()

	value := jira.FromInterface(map[string]interface{}{
		"name":   "x",
		"count":  3,
		"ratio":  0.5,
		"tags":   []string{"a", "b"},
		"nested": []interface{}{true, nil},
	})

	record, ok := value.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"count", "name", "nested", "ratio", "tags"}, record.Keys())
	assert.Equal(t, "x", record.String("name"))

	count, ok := record.Int("count")
	require.True(t, ok)
	assert.Equal(t, 3, count)
	assert.Equal(t, "0.5", record.Get("ratio").Text())
	assert.Len(t, record.Array("tags"), 2)
	assert.True(t, record.Array("nested")[1].IsNull())
}

func TestPayload_Accessors(t *testing.T) {
	t.Parallel()

	record := jira.Payload{
		"s": jira.StringValue("v"),
		"b": jira.BoolValue(true),
		"o": jira.ObjectValue(jira.Payload{"k": jira.StringValue("w")}),
		"n": jira.NullValue(),
	}

	assert.Equal(t, "v", record.String("s"))
	assert.Empty(t, record.String("b"))
	assert.True(t, record.Bool("b"))
	assert.False(t, record.Bool("missing"))
	assert.Equal(t, "w", record.Object("o").String("k"))
	assert.Nil(t, record.Object("s"))
	assert.Nil(t, record.Array("s"))
	assert.True(t, record.Has("n"))
	assert.False(t, record.Get("missing").Exists())

	_, ok := record.Lookup("missing")
	assert.False(t, ok)

	clone := record.Clone()
	clone["s"] = jira.StringValue("changed")
	assert.Equal(t, "v", record.String("s"))

	assert.Equal(t, map[string]interface{}{"k": "w"}, record.Object("o").Interface())
}
