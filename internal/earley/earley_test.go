package earley

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Symbol constants mirror the classic P/S/M/T arithmetic grammar used to
// exercise a from-scratch Earley implementation: P -> S, S -> S+M | M,
// M -> M*T | T, T -> one of four digit terminals.
const (
	symP = "P"
	symS = "S"
	symM = "M"
	symT = "T"

	symOne   = "1"
	symTwo   = "2"
	symThree = "3"
	symFour  = "4"
	symPlus  = "+"
	symTimes = "*"
)

func arithmeticGrammar() *Grammar[string] {
	return New(symP, []Rule[string]{
		{LHS: symP, Alternatives: [][]string{{symS}}},
		{LHS: symS, Alternatives: [][]string{{symS, symPlus, symM}, {symM}}},
		{LHS: symM, Alternatives: [][]string{{symM, symTimes, symT}, {symT}}},
		{LHS: symT, Alternatives: [][]string{{symOne}, {symTwo}, {symThree}, {symFour}}},
	})
}

func TestParse_acceptsValidSentence(t *testing.T) {
	g := arithmeticGrammar()
	sentence := []string{symTwo, symPlus, symThree, symTimes, symFour}
	res, ok := Parse(g, sentence)
	require.True(t, ok)
	require.NotNil(t, res)
}

func TestParse_rejectsInvalidSentence(t *testing.T) {
	g := arithmeticGrammar()
	sentence := []string{symPlus, symTwo}
	_, ok := Parse(g, sentence)
	require.False(t, ok)
}

func TestParse_rejectsTerminalOutsideGrammar(t *testing.T) {
	g := New(symT, []Rule[string]{
		{LHS: symT, Alternatives: [][]string{{symOne}}},
	})
	_, ok := Parse(g, []string{symTwo})
	require.False(t, ok)
}

func TestSPPF_unambiguousParseHasNoAmbiguity(t *testing.T) {
	g := arithmeticGrammar()
	res, ok := Parse(g, []string{symTwo, symPlus, symThree})
	require.True(t, ok)
	forest, ok := res.SPPF()
	require.True(t, ok)
	_, ambiguous := forest.Ambiguity()
	require.False(t, ambiguous)
}

func TestSPPF_treeCoversWholeSentence(t *testing.T) {
	g := arithmeticGrammar()
	sentence := []string{symTwo, symPlus, symThree, symTimes, symFour}
	res, ok := Parse(g, sentence)
	require.True(t, ok)
	forest, ok := res.SPPF()
	require.True(t, ok)
	edges := forest.Tree()
	require.NotEmpty(t, edges)

	// The terminal leaves, placed by their scan position, read off the sentence.
	leaves := make([]string, len(sentence))
	for _, e := range edges {
		if e.Child.IsTerminal {
			leaves[e.Child.Pos-1] = e.Child.Symbol
		}
	}
	require.Equal(t, sentence, leaves)
}

// Classic ambiguous grammar: S -> S S | "a". Three a's admit two distinct
// bracketings ((aa)a and a(aa)), so the final S(0,3) item collects more
// than one packed node.
func TestSPPF_detectsAmbiguity(t *testing.T) {
	const s = "S"
	const a = "a"
	g := New(s, []Rule[string]{
		{LHS: s, Alternatives: [][]string{{s, s}, {a}}},
	})
	res, ok := Parse(g, []string{a, a, a})
	require.True(t, ok)
	forest, ok := res.SPPF()
	require.True(t, ok)
	_, ambiguous := forest.Ambiguity()
	require.True(t, ambiguous)
}
