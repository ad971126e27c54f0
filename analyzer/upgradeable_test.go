package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUpgradeableByInheritance(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"initializable", `contract C is Initializable {}`, true},
		{"uups", `contract C is Ownable, UUPSUpgradeable {}`, true},
		{"qualified base", `contract C is oz.Initializable {}`, true},
		{"base with args", `contract C is Initializable(1) {}`, true},
		{"name is only a prefix", `contract C is InitializableToken {}`, false},
		{"name is only a suffix", `contract C is MyInitializable {}`, false},
		{"unrelated bases", `contract C is Ownable, ERC20 {}`, false},
		{"no bases", `contract C {}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contract, cur := contractUnderTest(t, tc.src)
			assert.Equal(t, tc.want, isUpgradeable(contract, cur))
		})
	}
}

func TestIsUpgradeableByAuthorizeUpgrade(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{
			"single address parameter",
			`contract C { function _authorizeUpgrade(address impl) internal override {} }`,
			true,
		},
		{
			"unnamed parameter",
			`contract C { function _authorizeUpgrade(address) internal override {} }`,
			true,
		},
		{
			"payable address does not qualify",
			`contract C { function _authorizeUpgrade(address payable impl) internal {} }`,
			false,
		},
		{
			"extra parameter",
			`contract C { function _authorizeUpgrade(address impl, uint256 v) internal {} }`,
			false,
		},
		{
			"no parameters",
			`contract C { function _authorizeUpgrade() internal {} }`,
			false,
		},
		{
			"different name",
			`contract C { function authorizeUpgrade(address impl) internal {} }`,
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contract, cur := contractUnderTest(t, tc.src)
			assert.Equal(t, tc.want, isUpgradeable(contract, cur))
		})
	}
}

func TestIsUpgradeableByDocComment(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{
			"oz-upgrades tag",
			"/// @custom:oz-upgrades\ncontract C {}",
			true,
		},
		{
			"oz-upgrades-from tag",
			"/// @custom:oz-upgrades-from ContractV1\ncontract C {}",
			true,
		},
		{
			"tag inside block doc comment",
			"/**\n * @custom:oz-upgrades\n */\ncontract C {}",
			true,
		},
		{
			"unrelated tag",
			"/// @custom:oz-upgrades-unsafe-allow constructor\ncontract C {}",
			false,
		},
		{
			"plain comment is not a doc comment",
			"// @custom:oz-upgrades\ncontract C {}",
			false,
		},
		{
			"no comment",
			"contract C {}",
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contract, cur := contractUnderTest(t, tc.src)
			assert.Equal(t, tc.want, isUpgradeable(contract, cur))
		})
	}
}
