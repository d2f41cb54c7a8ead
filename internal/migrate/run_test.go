package migrate

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.True(t, sort.StringsAreSorted(files), "migrations apply in lexical order")
	for _, f := range files {
		assert.True(t, strings.HasSuffix(f, ".sql"), "unexpected embedded file %q", f)
	}
}
