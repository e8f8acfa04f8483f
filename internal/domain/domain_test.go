package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		source  Locale
		want    map[Locale][]string
		wantErr bool
	}{
		{name: "null", raw: `null`, source: LocaleTR, want: nil},
		{name: "empty", raw: ``, source: LocaleTR, want: nil},
		{name: "list goes to source", raw: `["şiir", " aşk ", ""]`, source: LocaleTR, want: map[Locale][]string{LocaleTR: {"şiir", "aşk"}}},
		{name: "locale map", raw: `{"tr":["deniz"],"EN":["sea"]}`, source: LocaleTR, want: map[Locale][]string{LocaleTR: {"deniz"}, LocaleEN: {"sea"}}},
		{name: "unknown locale", raw: `{"de":["meer"]}`, source: LocaleTR, wantErr: true},
		{name: "scalar", raw: `"tag"`, source: LocaleTR, wantErr: true},
		{name: "list without source", raw: `["a"]`, source: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tags, err := ParseTags(json.RawMessage(tc.raw), tc.source)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.want == nil {
				assert.True(t, tags.IsEmpty())
				return
			}
			assert.Equal(t, tc.want, tags.ByLocale)
		})
	}
}

func TestTagsJSON(t *testing.T) {
	data, err := json.Marshal(Tags{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var tags Tags
	tags.Set(LocaleEN, []string{"sea"})
	data, err = json.Marshal(tags)
	require.NoError(t, err)
	assert.JSONEq(t, `{"en":["sea"]}`, string(data))

	var decoded Tags
	require.NoError(t, json.Unmarshal([]byte(`{"tr":["deniz"]}`), &decoded))
	assert.Equal(t, []string{"deniz"}, decoded.Get(LocaleTR))

	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.True(t, decoded.IsEmpty())
}

func TestCategoryFromFilter(t *testing.T) {
	c, ok := CategoryFromFilter("poems")
	assert.True(t, ok)
	assert.Equal(t, CategoryPoems, c)

	c, ok = CategoryFromFilter("Anılar ve Öyküler")
	assert.True(t, ok)
	assert.Equal(t, CategoryMemories, c)

	_, ok = CategoryFromFilter("recipes")
	assert.False(t, ok)
	assert.False(t, Category("Projects").Valid())
}

func TestLocale(t *testing.T) {
	l, ok := ParseLocale(" EN ")
	require.True(t, ok)
	assert.Equal(t, LocaleEN, l)
	assert.Equal(t, LocaleTR, l.Companion())

	_, ok = ParseLocale("de")
	assert.False(t, ok)
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("title.en", ReasonRequired)
	verr.Add("content.en", ReasonRequired)
	verr.Add("reading_time", ReasonInvalid)

	assert.Equal(t, "missing required fields: title.en, content.en; invalid fields: reading_time (invalid)", verr.Error())
	assert.True(t, verr.Has("content.en"))
	assert.False(t, verr.Has("category"))
}

func TestPostCloneIsDeep(t *testing.T) {
	var tags Tags
	tags.Set(LocaleTR, []string{"a"})
	p := &Post{Title: LocalizedText{LocaleTR: "Deneme"}, Tags: tags}

	clone := p.Clone()
	clone.Title[LocaleTR] = "Değişti"
	clone.Tags.ByLocale[LocaleTR][0] = "b"

	assert.Equal(t, "Deneme", p.Title[LocaleTR])
	assert.Equal(t, "a", p.Tags.Get(LocaleTR)[0])
}
