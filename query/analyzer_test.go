package query

import (
	"testing"

	"github.com/crestline/leasebot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.Intent
	}{
		{"tour request", "I'd like to schedule a tour", core.IntentAction},
		{"apply request", "how do I apply for this one", core.IntentAction},
		{"details request", "can I get more info on that", core.IntentAction},
		{"show me specific unit", "show me the one on Maple", core.IntentAction},

		{"bare digit choice", "2", core.IntentChoice},
		{"ordinal choice", "the second one looks great", core.IntentChoice},
		{"option reference", "let's go with option 3", core.IntentChoice},

		{"what properties", "what properties do you have", core.IntentExact},
		{"show me properties", "show me properties", core.IntentExact},
		{"all properties", "all properties please", core.IntentExact},
		{"available properties", "which available properties are there", core.IntentExact},

		{"filters plus noun", "2 bedroom apartments under $2000 with pets", core.IntentHybrid},
		{"pet friendly house", "looking for a pet friendly house", core.IntentHybrid},
		{"price plus property", "any property under that price range", core.IntentHybrid},

		{"filter keyword only", "2 bed 2 bath", core.IntentExact},
		{"rent keyword only", "rent under $1500", core.IntentExact},

		{"free form", "somewhere quiet near good coffee", core.IntentSemantic},
		{"empty", "", core.IntentSemantic},
		{"greeting", "hello there", core.IntentSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text), "text: %q", tt.text)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, core.IntentAction, Classify("SCHEDULE A TOUR"))
	assert.Equal(t, core.IntentExact, Classify("What Properties Do You Have"))
}

// Generic-listing phrases without filter keywords always classify exact,
// even though "show me" is also an action keyword.
func TestClassify_GenericListingBeatsShowMe(t *testing.T) {
	for _, text := range []string{
		"show me properties",
		"please show me properties downtown",
	} {
		assert.Equal(t, core.IntentExact, Classify(text), "text: %q", text)
	}
}

func TestExtractFilters_Scenario(t *testing.T) {
	f := ExtractFilters("2 bedroom apartments under $2000 with pets")

	require.NotNil(t, f.Beds)
	assert.Equal(t, 2, *f.Beds)

	require.NotNil(t, f.Rent)
	assert.Nil(t, f.Rent.Min)
	require.NotNil(t, f.Rent.Max)
	assert.Equal(t, float64(2000), *f.Rent.Max)

	require.NotNil(t, f.PetsAllowed)
	assert.True(t, *f.PetsAllowed)

	assert.Nil(t, f.Baths)
	assert.Nil(t, f.City)
	assert.Nil(t, f.Sqft)
}

func TestExtractFilters_BedsAndBaths(t *testing.T) {
	f := ExtractFilters("3 bed 2 bath house")
	require.NotNil(t, f.Beds)
	assert.Equal(t, 3, *f.Beds)
	require.NotNil(t, f.Baths)
	assert.Equal(t, 2.0, *f.Baths)

	f = ExtractFilters("a 1.5 bath apartment")
	require.NotNil(t, f.Baths)
	assert.Equal(t, 1.5, *f.Baths)
	assert.Nil(t, f.Beds)
}

func TestExtractFilters_Rent(t *testing.T) {
	t.Run("under sets max", func(t *testing.T) {
		f := ExtractFilters("something under $1,800")
		require.NotNil(t, f.Rent)
		assert.Nil(t, f.Rent.Min)
		assert.Equal(t, float64(1800), *f.Rent.Max)
	})

	t.Run("over sets min", func(t *testing.T) {
		f := ExtractFilters("more than $900 rent")
		require.NotNil(t, f.Rent)
		assert.Equal(t, float64(900), *f.Rent.Min)
		assert.Nil(t, f.Rent.Max)
	})

	t.Run("dash pair sets range", func(t *testing.T) {
		f := ExtractFilters("between $1000-$1500")
		require.NotNil(t, f.Rent)
		assert.Equal(t, float64(1000), *f.Rent.Min)
		assert.Equal(t, float64(1500), *f.Rent.Max)
	})

	t.Run("bare amount sets exact bound", func(t *testing.T) {
		f := ExtractFilters("rent around $1200")
		require.NotNil(t, f.Rent)
		assert.Equal(t, float64(1200), *f.Rent.Min)
		assert.Equal(t, float64(1200), *f.Rent.Max)
	})

	t.Run("no currency no rent filter", func(t *testing.T) {
		f := ExtractFilters("2 bedroom place")
		assert.Nil(t, f.Rent)
	})
}

func TestExtractFilters_City(t *testing.T) {
	f := ExtractFilters("apartments in Austin please")
	require.NotNil(t, f.City)
	assert.Equal(t, "austin", *f.City)

	f = ExtractFilters("anything in springfield")
	assert.Nil(t, f.City, "cities outside the allow-list are ignored")
}

func TestExtractFilters_Sqft(t *testing.T) {
	f := ExtractFilters("at least 900 sqft")
	require.NotNil(t, f.Sqft)
	require.NotNil(t, f.Sqft.Min)
	assert.Equal(t, 900, *f.Sqft.Min)
	assert.Nil(t, f.Sqft.Max)

	f = ExtractFilters("800-1200 square feet")
	require.NotNil(t, f.Sqft)
	assert.Equal(t, 800, *f.Sqft.Min)
	assert.Equal(t, 1200, *f.Sqft.Max)
}

func TestExtractFilters_PetsNeverNegative(t *testing.T) {
	// "no pets" still only asserts the positive form; the filter cannot
	// express "pets not wanted".
	f := ExtractFilters("no pets here")
	require.NotNil(t, f.PetsAllowed)
	assert.True(t, *f.PetsAllowed)
}

func TestAnalyze(t *testing.T) {
	q := Analyze("2 bedroom apartments under $2000 with pets")
	assert.Equal(t, core.IntentHybrid, q.Intent)
	assert.Equal(t, "2 bedroom apartments under $2000 with pets", q.Text)
	assert.False(t, q.Filters.Empty())
}
