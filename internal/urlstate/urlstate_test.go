package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	for _, raw := range []string{"", "page=abc", "page=0", "page=-3", "category=", "%zz"} {
		got := Decode(raw)
		assert.Equal(t, "all", got.Category, raw)
		assert.Equal(t, 1, got.Page, raw)
	}
}

func TestDecode_Values(t *testing.T) {
	got := Decode("category=Git+%26+GitHub&q=pdf+tools&page=3")
	assert.Equal(t, State{Category: "Git & GitHub", Query: "pdf tools", Page: 3}, got)
}

func TestEncode_DefaultStateHasNoParams(t *testing.T) {
	base, err := url.Parse("/")
	require.NoError(t, err)

	u := Encode(Default(), base)
	assert.Empty(t, u.RawQuery)
	assert.Equal(t, "/", Href(Default(), base))

	u = Encode(State{Category: "", Query: "   ", Page: 0}, base)
	assert.Empty(t, u.RawQuery)
}

func TestEncode_PreservesUnrelatedParams(t *testing.T) {
	base, err := url.Parse("/?lang=zh&page=9")
	require.NoError(t, err)

	u := Encode(State{Category: "AI & LLMs", Page: 1}, base)
	vals := u.Query()
	assert.Equal(t, "zh", vals.Get("lang"))
	assert.Equal(t, "AI & LLMs", vals.Get(ParamCategory))
	assert.False(t, vals.Has(ParamPage))

	assert.Equal(t, "/?lang=zh&page=9", base.String(), "base is not modified")
}

func TestRoundTrip(t *testing.T) {
	states := []State{
		Default(),
		{Category: "all", Query: "foo", Page: 1},
		{Category: "Latest", Query: "", Page: 2},
		{Category: "Git & GitHub", Query: "a+b=c&d", Page: 17},
		{Category: "all", Query: " 小红书 ", Page: 4},
	}
	base := &url.URL{Path: "/"}
	for _, s := range states {
		u := Encode(s, base)
		assert.Equal(t, s, Decode(u.RawQuery), u.String())
	}
}

func TestIsDefault(t *testing.T) {
	assert.True(t, Default().IsDefault())
	assert.True(t, State{}.IsDefault())
	assert.False(t, State{Category: "all", Page: 2}.IsDefault())
}
