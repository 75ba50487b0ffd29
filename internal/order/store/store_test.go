package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCreatedAtQuery_IsOrdered(t *testing.T) {
	assert.Contains(t, listCreatedAtQuery, "ORDER BY id ASC")
}
