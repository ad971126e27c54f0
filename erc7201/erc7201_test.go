package erc7201

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotHashReferenceVector(t *testing.T) {
	// Reference vector from EIP-7201 itself.
	assert.Equal(t,
		"0x183a6125c38840424c4a85fa12bab2ab606c4b6d0e7cc73c0c06ba5300eab500",
		SlotHash("example.main"))
}

func TestSlotHashShape(t *testing.T) {
	h := SlotHash("foo.storage.Foo")
	assert.True(t, strings.HasPrefix(h, "0x"))
	assert.Len(t, h, 66)
	// The low byte is always zeroed to keep the slot struct-aligned.
	assert.True(t, strings.HasSuffix(h, "00"))
}

func TestSlotHashDeterministic(t *testing.T) {
	assert.Equal(t, SlotHash("a.b.C"), SlotHash("a.b.C"))
	assert.NotEqual(t, SlotHash("a.b.C"), SlotHash("a.b.D"))
}

func TestExpectedID(t *testing.T) {
	assert.Equal(t, "foo.storage.Foo", ExpectedID("foo.storage", "Foo"))
	assert.Equal(t, "Foo", ExpectedID("", "Foo"))
}

func TestFormulaComment(t *testing.T) {
	got := FormulaComment("foo.storage.Foo")
	assert.Equal(t,
		`keccak256(abi.encode(uint256(keccak256("foo.storage.Foo")) - 1)) & ~bytes32(uint256(0xff))`,
		got)
}

func TestAnnotationText(t *testing.T) {
	assert.Equal(t,
		"@custom:storage-location erc7201:foo.storage.Foo",
		AnnotationText("foo.storage.Foo"))
}
