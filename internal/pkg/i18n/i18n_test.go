package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator(t *testing.T) {
	tr, err := New("ar")
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, "حاضر", tr.T(ctx, StatusPresent))
	assert.Equal(t, "Present", tr.T(WithLocale(ctx, "en-US,en;q=0.9"), StatusPresent))
	assert.Equal(t, "حاضر", tr.T(WithLocale(ctx, "fr"), StatusPresent), "unsupported locale falls back to default")
	assert.Equal(t, "no.such.message", tr.T(ctx, "no.such.message"))
}

func TestNew_RejectsUnknownDefault(t *testing.T) {
	for _, locale := range []string{"de", "fr", "ar-EG"} {
		_, err := New(locale)
		assert.Error(t, err, locale)
	}

	_, err := New("en")
	assert.NoError(t, err)

	_, err = New("not a tag!")
	assert.Error(t, err)
}
