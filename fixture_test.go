package simplex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixturesReplaySeedScenarios(t *testing.T) {
	fixtures, err := LoadFixtures("testdata/fixtures.json")
	require.NoError(t, err)
	require.Len(t, fixtures, 5)

	for i, f := range fixtures {
		f := f
		t.Run(f.AnalysisType, func(t *testing.T) {
			s, err := f.SimpleData.Build()
			require.NoError(t, err)

			root, err := s.Solve()
			require.NoError(t, err)
			assert.Truef(t, root.Equal(f.SimplexAnswer), "fixture %d: root answer %v, want %v", i, root, f.SimplexAnswer)

			after, err := f.RunAnalysis(s)
			if f.ExceptionClass != "" {
				var ie *InfeasibleError
				assert.True(t, errors.As(err, &ie), "fixture %d: expected %s, got %v", i, f.ExceptionClass, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, f.AnalysisAnswer)
			assert.Truef(t, after.Equal(*f.AnalysisAnswer), "fixture %d: analysis answer %v, want %v", i, after, f.AnalysisAnswer)
		})
	}
}
