package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableName(t *testing.T) {
	name := NewTableName("ai", "AGENTIC_DOC_EXTRACTION", "DOCS")

	assert.Equal(t, "ai.AGENTIC_DOC_EXTRACTION.DOCS", name.Qualified())
	assert.Equal(t, "DOCS", name.Local())
}
