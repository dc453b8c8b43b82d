package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_Order(t *testing.T) {
	d := New(0)
	d.Put("Title", String("A"))
	d.Put("Url", String("http://a"))
	d.Put("Width", Int(640))

	assert.Equal(t, []string{"Title", "Url", "Width"}, d.Keys())

	t.Run("replace keeps position", func(t *testing.T) {
		d.Put("Title", String("B"))
		assert.Equal(t, []string{"Title", "Url", "Width"}, d.Keys())
		title, ok := d.GetString("Title")
		require.True(t, ok)
		assert.Equal(t, "B", title)
	})

	t.Run("remove closes gap", func(t *testing.T) {
		assert.True(t, d.Remove("Url"))
		assert.False(t, d.Remove("Url"))
		assert.Equal(t, []string{"Title", "Width"}, d.Keys())
		assert.Equal(t, 2, d.Len())
	})

	t.Run("keys is a copy", func(t *testing.T) {
		keys := d.Keys()
		keys[0] = "mutated"
		assert.Equal(t, "Title", d.Keys()[0])
	})
}

func TestDictionary_Nil(t *testing.T) {
	var d *Dictionary
	_, ok := d.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
	assert.Nil(t, d.Keys())
	assert.False(t, d.Remove("x"))
	assert.Nil(t, d.Clone())
}

func TestDictionary_TypedGetters(t *testing.T) {
	d := FromStrings("SearchTerms", "cats", "dangling")
	assert.Equal(t, 1, d.Len())

	d.Put("Total", Int(42))

	_, ok := d.GetInt("SearchTerms")
	assert.False(t, ok)

	n, ok := d.GetInt("Total")
	require.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestDictionary_MarshalJSON(t *testing.T) {
	d := New(3)
	d.Put("z", String("last-letter"))
	d.Put("a", Int(1))
	d.Put("ok", Bool(true))

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":"last-letter","a":1,"ok":true}`, string(b))
}

func TestDictionary_Clone(t *testing.T) {
	d := FromStrings("k", "v")
	c := d.Clone()
	c.Put("k", String("changed"))

	v, _ := d.GetString("k")
	assert.Equal(t, "v", v)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind    Kind
		raw     string
		want    Value
		wantErr bool
	}{
		{KindString, "hello", String("hello"), false},
		{KindInt, " 640 ", Int(640), false},
		{KindInt, "abc", Value{}, true},
		{KindFloat, "47.61", Float(47.61), false},
		{KindBool, "true", Bool(true), false},
		{KindBool, "maybe", Value{}, true},
		{KindBytes, "aGk=", Bytes([]byte("hi")), false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.kind, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got.Interface())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Integer")
	require.NoError(t, err)
	assert.Equal(t, KindInt, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindString, k)

	_, err = ParseKind("decimal")
	assert.Error(t, err)
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "640", Int(640).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, "cats", String("cats").Text())
	assert.Equal(t, "", Null().Text())
}
