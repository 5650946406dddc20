package db

import (
	"testing"

	"github.com/jonathan/intelliconsult/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFilter(t *testing.T) {
	got, err := encodeFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)

	got, err = encodeFilter(docstore.Filter{"role": "consultant"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role": "consultant"}`, got)
}

func TestEncodeFilter_Unencodable(t *testing.T) {
	_, err := encodeFilter(docstore.Filter{"bad": make(chan int)})
	assert.Error(t, err)
}
