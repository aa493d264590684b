package srs

import (
	"testing"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultService(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()
	require.NotNil(t, service)

	ds, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	assert.Equal(t, NewDefaultParams(), ds.params)
}

func TestServiceApplyAnswer(t *testing.T) {
	t.Parallel()

	service := NewDefaultService()

	_, err := service.ApplyAnswer(nil, true, 0, testNow)
	assert.ErrorIs(t, err, ErrNilWord)

	w := newWord()
	got, err := service.ApplyAnswer(&w, true, 800, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.WordStatusLearning, got.Status)
	assert.Equal(t, domain.WordStatusNew, w.Status, "input must not be modified")
}

func TestServiceWithCustomParams(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	params.FirstInterval = 2
	params.StrengthGain = 25
	service := NewServiceWithParams(params)

	w := newWord()
	got, err := service.ApplyAnswer(&w, true, 0, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Interval)
	assert.Equal(t, 25, got.StrengthScore)

	fallback := NewServiceWithParams(nil)
	got, err = fallback.ApplyAnswer(&w, true, 0, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Interval)
}
