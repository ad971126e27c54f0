package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/slotguard/core"
)

func TestParseStorageLocationLine(t *testing.T) {
	id, ok := parseStorageLocationLine("/// @custom:storage-location erc7201:foo.storage.Vault")
	require.True(t, ok)
	assert.Equal(t, "foo.storage.Vault", id)

	id, ok = parseStorageLocationLine("/// @custom:storage-location erc7201:foo.bar trailing words")
	require.True(t, ok)
	assert.Equal(t, "foo.bar", id)

	_, ok = parseStorageLocationLine("/// @custom:storage-location erc7201:")
	assert.False(t, ok)

	_, ok = parseStorageLocationLine("/// @notice not an annotation")
	assert.False(t, ok)
}

func TestParseStorageLocationBlock(t *testing.T) {
	id, ok := parseStorageLocationBlock("/** @custom:storage-location erc7201:foo.bar */")
	require.True(t, ok)
	assert.Equal(t, "foo.bar", id)

	// Terminator directly after the id, no whitespace.
	id, ok = parseStorageLocationBlock("/**@custom:storage-location erc7201:x.y*/")
	require.True(t, ok)
	assert.Equal(t, "x.y", id)

	_, ok = parseStorageLocationBlock("/** @custom:storage-location erc7201:*/")
	assert.False(t, ok)
}

func TestNamespaceIdMatchesExpected(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:foo.storage.Foo
    struct FooStorage {
        uint256 total;
    }
}`
	list := analyze(t, "foo.storage", src)
	assert.Empty(t, list.ByCode(core.CodeNamespaceIdMismatch))
}

func TestNamespaceIdMismatch(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:bar.Foo
    struct FooStorage {
        uint256 total;
    }
}`
	list := analyze(t, "foo.storage", src)
	diags := list.ByCode(core.CodeNamespaceIdMismatch)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, core.SeverityInfo, d.Severity)
	assert.Equal(t, "/// @custom:storage-location erc7201:bar.Foo",
		src[d.Range.Start:d.Range.End])

	require.NotNil(t, d.Fix)
	require.Len(t, d.Fix.Edits, 1)
	assert.Equal(t, "/// @custom:storage-location erc7201:foo.storage.Foo",
		d.Fix.Edits[0].NewText)

	// Applying the fix resolves the diagnostic.
	fixed := applyFix(t, src, d)
	assert.Empty(t, analyze(t, "foo.storage", fixed).ByCode(core.CodeNamespaceIdMismatch))
}

func TestNamespaceIdMismatchBlockComment(t *testing.T) {
	src := `contract Foo is Initializable {
    /** @custom:storage-location erc7201:bar.Foo */
    struct FooStorage {
        uint256 total;
    }
}`
	list := analyze(t, "foo.storage", src)
	diags := list.ByCode(core.CodeNamespaceIdMismatch)
	require.Len(t, diags, 1)
	require.NotNil(t, diags[0].Fix)
	assert.Equal(t, "/** @custom:storage-location erc7201:foo.storage.Foo */",
		diags[0].Fix.Edits[0].NewText)
}

func TestEmptyPrefixExpectsBareContractName(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:Foo
    struct FooStorage {
        uint256 total;
    }
}`
	assert.Empty(t, analyze(t, "", src).ByCode(core.CodeNamespaceIdMismatch))
}

func TestDuplicateNamespaceId(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:foo.storage.Foo
    struct FooStorage {
        uint256 total;
    }

    /// @custom:storage-location erc7201:foo.storage.Foo
    struct OtherStorage {
        uint256 count;
    }
}`
	list := analyze(t, "foo.storage", src)
	dups := list.ByCode(core.CodeDuplicateNamespaceId)
	require.Len(t, dups, 2)
	for _, d := range dups {
		assert.Equal(t, core.SeverityError, d.Severity)
	}
	assert.Empty(t, list.ByCode(core.CodeMultipleNamespaces))
	assert.Empty(t, list.ByCode(core.CodeNamespaceIdMismatch))
}

func TestMultipleDistinctNamespaces(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:foo.storage.Foo
    struct FooStorage {
        uint256 total;
    }

    /// @custom:storage-location erc7201:foo.storage.Extra
    struct ExtraStorage {
        uint256 count;
    }
}`
	list := analyze(t, "foo.storage", src)
	multi := list.ByCode(core.CodeMultipleNamespaces)
	require.Len(t, multi, 2)
	for _, d := range multi {
		assert.Equal(t, core.SeverityWarning, d.Severity)
	}
	assert.Empty(t, list.ByCode(core.CodeDuplicateNamespaceId))
	// Neither annotation is singled out for an id check.
	assert.Empty(t, list.ByCode(core.CodeNamespaceIdMismatch))
}

func TestDuplicatesTakePrecedenceOverMultiple(t *testing.T) {
	src := `contract Foo is Initializable {
    /// @custom:storage-location erc7201:foo.storage.Foo
    struct A {
        uint256 a;
    }

    /// @custom:storage-location erc7201:foo.storage.Foo
    struct B {
        uint256 b;
    }

    /// @custom:storage-location erc7201:foo.storage.Other
    struct C {
        uint256 c;
    }
}`
	list := analyze(t, "foo.storage", src)
	// Only the duplicated occurrences are reported.
	assert.Len(t, list.ByCode(core.CodeDuplicateNamespaceId), 2)
	assert.Empty(t, list.ByCode(core.CodeMultipleNamespaces))
}

func TestUnannotatedStructIsIgnored(t *testing.T) {
	src := `contract Foo is Initializable {
    /// Plain documentation, no storage annotation.
    struct Config {
        uint256 limit;
    }
}`
	list := analyze(t, "foo.storage", src)
	assert.Empty(t, list.ByCode(core.CodeNamespaceIdMismatch))
	assert.Empty(t, list.ByCode(core.CodeMultipleNamespaces))
}
