package solidity

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/slotguard/syntax"
)

const sampleContract = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

/// @custom:oz-upgrades
contract Vault is Initializable, Ownable {
    /// @custom:storage-location erc7201:foo.storage.Vault
    struct VaultStorage {
        uint256 total;
        mapping(address => uint256) balances;
    }

    uint256 public total;
    address payable treasury;

    function _authorizeUpgrade(address newImplementation) internal override {}

    function deposit(uint256 amount) external payable returns (bool) {
        return true;
    }
}
`

func findContracts(root *syntax.Nonterminal) []*syntax.Nonterminal {
	var out []*syntax.Nonterminal
	for _, c := range root.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleContract {
			out = append(out, nt)
		}
	}
	return out
}

func membersOf(contract *syntax.Nonterminal, rule syntax.Rule) []*syntax.Nonterminal {
	var out []*syntax.Nonterminal
	for _, c := range contract.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == rule {
			out = append(out, nt)
		}
	}
	return out
}

func TestParseContractShape(t *testing.T) {
	res := Parse(sampleContract)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	contracts := findContracts(res.Root)
	require.Len(t, contracts, 1)
	vault := contracts[0]

	assert.Equal(t, "Vault", ContractName(vault))
	assert.Equal(t, []string{"Initializable", "Ownable"}, BaseNames(vault))

	structs := membersOf(vault, syntax.RuleStruct)
	require.Len(t, structs, 1)
	assert.Equal(t, "VaultStorage", StructName(structs[0]))

	vars := membersOf(vault, syntax.RuleStateVar)
	require.Len(t, vars, 2)
	assert.Equal(t, "total", StateVarName(vars[0]))
	assert.Equal(t, "treasury", StateVarName(vars[1]))

	funcs := membersOf(vault, syntax.RuleFunction)
	require.Len(t, funcs, 2)
	assert.Equal(t, "_authorizeUpgrade", FunctionName(funcs[0]))
	params := FunctionParams(funcs[0])
	require.Len(t, params, 1)
	assert.Equal(t, "address", ParamTypeText(params[0]))
}

func TestParseKeepsDocCommentAsPrecedingSibling(t *testing.T) {
	res := Parse(sampleContract)
	vault := findContracts(res.Root)[0]

	// The struct's doc comment must sit in the contract's child list right
	// before the struct node (modulo whitespace), not inside the struct.
	var structIdx int
	for i, c := range vault.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleStruct {
			structIdx = i
			break
		}
	}
	require.Positive(t, structIdx)

	var doc *syntax.Terminal
	for i := structIdx - 1; i >= 0; i-- {
		t2, ok := vault.Children[i].(*syntax.Terminal)
		if !ok || !t2.Kind.IsTrivia() {
			break
		}
		if t2.Kind == syntax.KindDocLineComment {
			doc = t2
			break
		}
	}
	require.NotNil(t, doc)
	assert.Contains(t, doc.Text, "erc7201:foo.storage.Vault")
}

func TestParseInheritanceWithArgumentsAndQualifiedNames(t *testing.T) {
	src := `contract C is Base(1, 2), lib.Mixin {}`
	res := Parse(src)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	c := findContracts(res.Root)[0]
	assert.Equal(t, []string{"Base", "Mixin"}, BaseNames(c))
}

func TestParseAbstractContract(t *testing.T) {
	res := Parse(`abstract contract A { uint256 x; }`)
	require.True(t, res.Valid)
	c := findContracts(res.Root)[0]
	assert.Equal(t, "A", ContractName(c))
}

func TestParseStateVarInitializer(t *testing.T) {
	res := Parse(`contract C { uint256 public x = compute(1, 2) + 3; }`)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	c := findContracts(res.Root)[0]
	vars := membersOf(c, syntax.RuleStateVar)
	require.Len(t, vars, 1)

	expr := StateVarInitializer(vars[0])
	require.NotNil(t, expr)
	r := syntax.TrimmedRange(syntax.NewCursor(expr))
	assert.Equal(t, "compute(1, 2) + 3", res.Source[r.Start:r.End])
}

func TestParseRecoversFromUnknownMembers(t *testing.T) {
	src := `contract C {
    using SafeERC20 for IERC20;
    enum Phase { Open, Closed }
    uint256 counter;
}`
	res := Parse(src)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	c := findContracts(res.Root)[0]
	vars := membersOf(c, syntax.RuleStateVar)
	require.Len(t, vars, 1)
	assert.Equal(t, "counter", StateVarName(vars[0]))
}

func TestParseReportsErrorsButKeepsGoing(t *testing.T) {
	res := Parse(`contract { uint256 x; } contract D { uint256 y; }`)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	// The second contract still parses.
	found := false
	for _, c := range findContracts(res.Root) {
		if ContractName(c) == "D" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseStateVariableFragment(t *testing.T) {
	sv, err := ParseStateVariable("uint256 public x", nil)
	assert.Error(t, err) // missing semicolon

	sv, err = ParseStateVariable("uint256 public x;", nil)
	require.NoError(t, err)
	assert.Equal(t, "uint256", sv.TypeText)
	assert.Equal(t, "x", sv.Name)
	assert.Equal(t, []string{"public"}, sv.Attributes)
	assert.Empty(t, sv.Initializer)
	assert.Equal(t, "uint256 x;", sv.ReplacementDeclaration())

	sv, err = ParseStateVariable("mapping(address => uint256) private _balances;", nil)
	require.NoError(t, err)
	assert.Equal(t, "mapping(address => uint256)", sv.TypeText)
	assert.Equal(t, "_balances", sv.Name)
	assert.True(t, sv.HasAttribute("private"))

	sv, err = ParseStateVariable("uint256 public constant MAX = 100;", nil)
	require.NoError(t, err)
	assert.True(t, sv.HasAttribute("constant"))
	assert.Equal(t, "100", sv.Initializer)

	sv, err = ParseStateVariable("address payable owner;", nil)
	require.NoError(t, err)
	assert.Equal(t, "address payable", sv.TypeText)
	assert.Empty(t, sv.Attributes)

	sv, err = ParseStateVariable("uint256[] internal amounts;", nil)
	require.NoError(t, err)
	assert.Equal(t, "uint256[]", sv.TypeText)
}

func TestParamTypeTextDistinguishesAddressPayable(t *testing.T) {
	res := Parse(`contract C { function _authorizeUpgrade(address payable impl) internal {} }`)
	require.True(t, res.Valid)

	c := findContracts(res.Root)[0]
	funcs := membersOf(c, syntax.RuleFunction)
	require.Len(t, funcs, 1)
	params := FunctionParams(funcs[0])
	require.Len(t, params, 1)
	assert.Equal(t, "address payable", ParamTypeText(params[0]))
}

func TestParseStateVariableTransientNeedsRecentCompiler(t *testing.T) {
	_, err := ParseStateVariable("uint256 transient counter;", semver.MustParse("0.8.20"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transient")

	sv, err := ParseStateVariable("uint256 transient counter;", semver.MustParse("0.8.28"))
	require.NoError(t, err)
	assert.True(t, sv.HasAttribute("transient"))

	// nil picks the union grammar.
	_, err = ParseStateVariable("uint256 transient counter;", nil)
	assert.NoError(t, err)
}

func TestContractNameRange(t *testing.T) {
	src := `abstract contract Vault is Initializable {}`
	res := Parse(src)
	require.True(t, res.Valid)

	r, ok := ContractNameRange(findContracts(res.Root)[0])
	require.True(t, ok)
	assert.Equal(t, "Vault", src[r.Start:r.End])
}

func TestContractNameRangeMissingName(t *testing.T) {
	res := Parse(`contract { uint256 x; }`)
	_, ok := ContractNameRange(findContracts(res.Root)[0])
	assert.False(t, ok)
}
