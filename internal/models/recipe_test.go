package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEffectiveSteps(t *testing.T) {
	tests := []struct {
		name      string
		recipe    Recipe
		wantTexts []string
		wantImage map[int]string
	}{
		{
			name: "StepItemsCanonicalOverStaleSteps",
			recipe: Recipe{
				StepItems: StepItemList{
					{Text: "Chop"},
					{Text: "Boil", ImageURL: strPtr("x")},
				},
				Steps: StringList{"Chop", "Boil"},
			},
			wantTexts: []string{"Chop", "Boil"},
			wantImage: map[int]string{1: "x"},
		},
		{
			name: "LegacyStepsWhenNoItems",
			recipe: Recipe{
				Steps: StringList{"Mix", "Bake"},
			},
			wantTexts: []string{"Mix", "Bake"},
			wantImage: map[int]string{},
		},
		{
			name:      "Empty",
			recipe:    Recipe{},
			wantTexts: []string{},
			wantImage: map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := tt.recipe.EffectiveSteps()
			require.Len(t, items, len(tt.wantTexts))
			for i, text := range tt.wantTexts {
				assert.Equal(t, text, items[i].Text)
				if url, ok := tt.wantImage[i]; ok {
					require.NotNil(t, items[i].ImageURL)
					assert.Equal(t, url, *items[i].ImageURL)
				} else {
					assert.Nil(t, items[i].ImageURL)
				}
			}
		})
	}
}

func TestStringListScanValue(t *testing.T) {
	list := StringList{"flour", "water"}
	v, err := list.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, list, out)

	// nil column leaves the destination untouched
	var empty StringList
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	// string payloads (sqlite) are accepted too
	var fromString StringList
	require.NoError(t, fromString.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, fromString)
}

func TestStepItemListScanValue(t *testing.T) {
	list := StepItemList{{Text: "Chop"}, {Text: "Serve", ImageURL: strPtr("/media/1/steps/x.jpg")}}
	v, err := list.Value()
	require.NoError(t, err)

	var out StepItemList
	require.NoError(t, out.Scan(v))
	require.Len(t, out, 2)
	assert.Equal(t, "Chop", out[0].Text)
	require.NotNil(t, out[1].ImageURL)
	assert.Equal(t, "/media/1/steps/x.jpg", *out[1].ImageURL)
}

func TestNilListsPersistAsEmptyArrays(t *testing.T) {
	var list StringList
	v, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var items StepItemList
	v, err = items.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
