package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchtree/dict"
	"github.com/hupe1980/searchtree/model"
)

func noopCreate(*model.Result, *dict.Dictionary) error { return nil }

func TestRegistry_Builtins(t *testing.T) {
	r := New()

	e, ok := r.LookupResult("NewsResult")
	require.True(t, ok)
	assert.True(t, e.Builtin)
	assert.Equal(t, model.ResultNews, e.Kind)
	assert.False(t, e.Common)

	e, ok = r.LookupResult("Thumbnails")
	require.True(t, ok)
	assert.True(t, e.Common)
	assert.True(t, e.AcceptsArray)

	resp, ok := r.LookupResponse("Image")
	require.True(t, ok)
	assert.Equal(t, model.ResponseImage, resp.Kind)

	resp, ok = r.LookupResponse(BundleElement)
	require.True(t, ok)
	assert.Equal(t, model.ResponseBundle, resp.Kind)

	assert.Zero(t, r.Len())
}

func TestRegistry_WithoutBuiltins(t *testing.T) {
	r := New(WithoutBuiltins())
	_, ok := r.LookupResult("WebResult")
	assert.False(t, ok)

	require.NoError(t, r.RegisterResult("WebResult", false, false, noopCreate, nil))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Exclusivity(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterResult("ProductResult", false, false, noopCreate, nil))
	err := r.RegisterResult("ProductResult", false, false, noopCreate, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// names are unique across both tables
	err = r.RegisterResponse("Badge", func(*model.Response, *dict.Dictionary) error { return nil }, nil)
	require.NoError(t, err)
	err = r.RegisterResult("Badge", false, true, noopCreate, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	require.NoError(t, r.Unregister("ProductResult"))
	assert.ErrorIs(t, r.Unregister("ProductResult"), ErrNotFound)
	require.NoError(t, r.RegisterResult("ProductResult", false, false, noopCreate, nil))
}

func TestRegistry_BuiltinNamesAreFixed(t *testing.T) {
	r := New()

	for _, name := range []string{"WebResult", "Thumbnail", "Error", "Web", "Bundle", "Query"} {
		t.Run(name, func(t *testing.T) {
			var err error
			if IsResultName(name) {
				err = r.RegisterResult(name, false, false, noopCreate, nil)
			} else {
				err = r.RegisterResponse(name, func(*model.Response, *dict.Dictionary) error { return nil }, nil)
			}
			assert.ErrorIs(t, err, ErrAlreadyRegistered)
		})
	}

	assert.ErrorIs(t, r.Unregister("WebResult"), ErrNotFound)
	assert.ErrorIs(t, r.Unregister("Web"), ErrNotFound)
	_, ok := r.LookupResult("WebResult")
	assert.True(t, ok)
}

func TestRegistry_InvalidArgument(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		err  error
	}{
		{"empty name", r.RegisterResult("", false, false, noopCreate, nil)},
		{"nil create", r.RegisterResult("FooResult", false, false, nil, nil)},
		{"ordinary without suffix", r.RegisterResult("Foo", false, false, noopCreate, nil)},
		{"common with suffix", r.RegisterResult("FooResult", false, true, noopCreate, nil)},
		{"response with suffix", r.RegisterResponse("FooResult", func(*model.Response, *dict.Dictionary) error { return nil }, nil)},
		{"response nil create", r.RegisterResponse("Foo", nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, ErrInvalidArgument)
		})
	}
	assert.Zero(t, r.Len())
}

func TestRegistry_EntriesAndReset(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterResult("ProductResult", false, false, noopCreate, nil))

	entries := r.Entries()
	names := make([]string, 0, len(entries.Results))
	for _, e := range entries.Results {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "ProductResult")
	assert.Contains(t, names, "WebResult")
	assert.IsIncreasing(t, names)

	r.Reset()
	assert.Zero(t, r.Len())
	_, ok := r.LookupResult("ProductResult")
	assert.False(t, ok)
	_, ok = r.LookupResult("WebResult")
	assert.True(t, ok)
}

func TestRegistry_LookupIsolatedFromUnregister(t *testing.T) {
	r := New()
	calls := 0
	create := func(*model.Result, *dict.Dictionary) error {
		calls++
		return nil
	}
	require.NoError(t, r.RegisterResult("ProductResult", false, false, create, nil))

	e, ok := r.LookupResult("ProductResult")
	require.True(t, ok)
	require.NoError(t, r.Unregister("ProductResult"))

	resp := model.NewResponse(model.ResponseCustom, "Shop")
	defer resp.Free()
	res, err := resp.NewResult(e.Kind, e.Name, false, false)
	require.NoError(t, err)
	require.NoError(t, e.Create(res, dict.New(0)))
	assert.Equal(t, 1, calls)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestIsResultName(t *testing.T) {
	assert.True(t, IsResultName("WebResult"))
	assert.True(t, IsResultName("Error"))
	assert.False(t, IsResultName("Result"))
	assert.False(t, IsResultName("Thumbnail"))
}

func TestLoadConfig_Apply(t *testing.T) {
	const data = `
results:
  - name: ProductResult
    fields: {Price: float, Stock: int}
    required: [Title]
    accepts: [Badge]
  - name: Badge
    common: true
responses:
  - name: Shopping
    fields: {Total: int}
    accepts: [Badge]
`
	cfg, err := LoadConfig(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cfg.Results, 2)

	r := New()
	require.NoError(t, r.Apply(cfg))
	assert.Equal(t, 3, r.Len())

	// second apply collides and registers nothing
	assert.ErrorIs(t, r.Apply(cfg), ErrAlreadyRegistered)
	assert.Equal(t, 3, r.Len())

	shop, ok := r.LookupResponse("Shopping")
	require.True(t, ok)
	assert.Equal(t, model.ResponseCustom, shop.Kind)

	resp := model.NewResponse(shop.Kind, shop.Name)
	defer resp.Free()
	require.NoError(t, shop.Create(resp, dict.FromStrings("Total", "12", "NextPageToken", "abc")))
	total, ok := resp.Total()
	assert.True(t, ok)
	assert.Equal(t, int64(12), total)
	tok, _ := resp.NextPageToken()
	assert.Equal(t, "abc", tok)

	product, _ := r.LookupResult("ProductResult")
	res, err := resp.NewResult(product.Kind, product.Name, false, false)
	require.NoError(t, err)

	t.Run("typed fields", func(t *testing.T) {
		require.NoError(t, product.Create(res, dict.FromStrings("Title", "Mug", "Price", "9.5", "Stock", "3")))
		assert.Equal(t, []string{"Title", "Price", "Stock"}, res.Fields().Keys())
		price, _ := res.Field("Price")
		assert.Equal(t, dict.KindFloat, price.Kind)
		assert.InDelta(t, 9.5, price.F64, 1e-9)
	})

	t.Run("missing required", func(t *testing.T) {
		err := product.Create(res, dict.FromStrings("Price", "1"))
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("invalid typed value", func(t *testing.T) {
		err := product.Create(res, dict.FromStrings("Title", "x", "Stock", "many"))
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("extend", func(t *testing.T) {
		badge, _ := r.LookupResult("Badge")
		b, err := resp.NewResult(badge.Kind, badge.Name, false, true)
		require.NoError(t, err)
		assert.True(t, product.Extend(res, b))
		child, ok := res.Child("Badge")
		require.True(t, ok)
		assert.Same(t, b, child)

		other, err := resp.NewResult(model.ResultThumbnail, "Thumbnail", false, true)
		require.NoError(t, err)
		assert.False(t, product.Extend(res, other))

		b2, err := resp.NewResult(badge.Kind, badge.Name, false, true)
		require.NoError(t, err)
		assert.True(t, shop.Extend(resp, b2))
		assert.Equal(t, []*model.Result{b2}, resp.InternalResults())
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("results: [{name: X, colour: red}]"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	cfg, err := LoadConfig(strings.NewReader("results: [{name: XResult, fields: {A: decimal}}]"))
	require.NoError(t, err)
	assert.ErrorIs(t, New().Apply(cfg), ErrInvalidArgument)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Results)
}
