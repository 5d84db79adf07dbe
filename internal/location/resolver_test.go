package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRegionSwitches(t *testing.T) {
	tests := []struct {
		name   string
		start  Region
		query  string
		expect Region
	}{
		{"boston keywords", RegionBayArea, "coffee shops in Boston", RegionBoston},
		{"bay area keywords", RegionBoston, "museums near Golden Gate", RegionBayArea},
		{"neighborhood keyword", RegionBayArea, "dinner in the North End", RegionBoston},
		{"no keywords keeps active", RegionBoston, "somewhere fun tonight", RegionBoston},
		{"no keywords keeps active bay", RegionBayArea, "somewhere fun tonight", RegionBayArea},
		{"both regions keeps active", RegionBoston, "boston vs san francisco food", RegionBoston},
		{"only active region keywords", RegionBayArea, "best views of the bay area", RegionBayArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.start)
			assert.Equal(t, tt.expect, r.DetectRegion(tt.query))
		})
	}
}

func TestApplyRegionUpdatesDisplayLocation(t *testing.T) {
	r := NewResolver(RegionBoston)

	state := r.ApplyRegion(RegionBayArea)
	assert.Equal(t, RegionBayArea, state.Region)
	assert.Equal(t, "San Francisco Bay Area, CA", state.DisplayLocation)
	assert.False(t, state.ManualOverride)
}

func TestManualOverrideFreezesState(t *testing.T) {
	r := NewResolver(RegionBoston)

	state, err := r.SetManualAddress("10 Brattle St, Cambridge, MA")
	require.NoError(t, err)
	assert.True(t, state.ManualOverride)
	assert.Equal(t, "10 Brattle St, Cambridge, MA", state.DisplayLocation)
	assert.Equal(t, RegionBoston, state.Region)

	// No detection sequence may move the frozen state.
	r.ApplyRegion(r.DetectRegion("tacos in san francisco"))
	r.ApplyRegion(RegionBayArea)
	r.Resolve("best of oakland and berkeley")

	state = r.State()
	assert.True(t, state.ManualOverride)
	assert.Equal(t, "10 Brattle St, Cambridge, MA", state.DisplayLocation)
	assert.Equal(t, RegionBoston, state.Region)
}

func TestResetToAutoDetect(t *testing.T) {
	r := NewResolver(RegionBoston)
	_, err := r.SetManualAddress("500 Castro St, Mountain View")
	require.NoError(t, err)

	state := r.ResetToAutoDetect()
	assert.False(t, state.ManualOverride)
	assert.Equal(t, RegionBayArea, state.Region)
	assert.Equal(t, "San Francisco Bay Area, CA", state.DisplayLocation)

	// Detection is live again
	state = r.Resolve("coffee in boston")
	assert.Equal(t, RegionBoston, state.Region)
	assert.Equal(t, "Boston, MA", state.DisplayLocation)
}

func TestValidateManualAddress(t *testing.T) {
	r := NewResolver(RegionBoston)

	region, err := r.ValidateManualAddress("  125 Summer St, Boston ")
	require.NoError(t, err)
	assert.Equal(t, RegionBoston, region)

	region, err = r.ValidateManualAddress("1 Ferry Building, San Francisco, CA")
	require.NoError(t, err)
	assert.Equal(t, RegionBayArea, region)

	// State suffix covers towns not on the city lists.
	region, err = r.ValidateManualAddress("742 Pine St, Marblehead, MA")
	require.NoError(t, err)
	assert.Equal(t, RegionBoston, region)

	region, err = r.ValidateManualAddress("1 Elm St, Lowell, MA 01854")
	require.NoError(t, err)
	assert.Equal(t, RegionBoston, region)

	region, err = r.ValidateManualAddress("450 Main St, Half Moon Bay, CA")
	require.NoError(t, err)
	assert.Equal(t, RegionBayArea, region)

	_, err = r.ValidateManualAddress("10 Main St, Nowhereville")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Boston, MA")
	assert.Contains(t, err.Error(), "San Francisco Bay Area, CA")

	_, err = r.ValidateManualAddress("   ")
	require.Error(t, err)
}

func TestMatchRegion(t *testing.T) {
	r := NewResolver(RegionBoston)

	region, ok := r.MatchRegion("Somerville Massachusetts")
	assert.True(t, ok)
	assert.Equal(t, RegionBoston, region)

	region, ok = r.MatchRegion("Oakland California")
	assert.True(t, ok)
	assert.Equal(t, RegionBayArea, region)

	_, ok = r.MatchRegion("Chicago Illinois")
	assert.False(t, ok)
}
