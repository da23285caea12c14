// Package ir implements the Module IR (spec component G): the typed node
// tree a compiled module is made of, consumed directly by the runtime
// (bytecode is explicitly out of scope, spec §1).
package ir

import (
	"egg/internal/types"
)

// Range is a source location span, forwarded verbatim from whatever
// produced the node that carries it (spec §3.5).
type Range struct {
	File                   string
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// Kind enumerates every Module IR node kind. Statement, expression, and
// type-expression kinds from spec §4.6 are all represented uniformly as
// nodes with children, matching orig:ovum/node.h's single INode hierarchy.
type Kind int

const (
	// Statements
	StmtBlock Kind = iota
	StmtDeclareVariable
	StmtDefineVariable
	StmtDefineFunction
	StmtDefineType
	StmtMutate
	StmtForEach
	StmtForLoop
	StmtIf
	StmtReturn
	StmtYield
	StmtThrow
	StmtTry
	StmtCatch
	StmtFinally
	StmtWhile
	StmtDo
	StmtSwitch
	StmtCase
	StmtDefault
	StmtBreak
	StmtContinue
	StmtExpression
	StmtGeneratorInvoke

	// Expressions
	ExprLiteral
	ExprVariableGet
	ExprTypeVariableGet
	ExprUnary
	ExprBinary
	ExprTernary
	ExprCall
	ExprIndex
	ExprPropertyGet
	ExprReference
	ExprDereference
	ExprArray
	ExprObject
	ExprEon
	ExprGuard
	ExprTypeManifestation
	ExprFunctionConstruct
	ExprFunctionCapture
	ExprNamedPair
	ExprEllipsis
	ExprMissing
	ExprValuePredicateOp

	// Type expressions
	TypePrimitive
	TypeUnary
	TypeBinary
	TypeFunctionSignature
	TypeFunctionSignatureParameter
	TypeSpecification
)

// Operand tags which payload field (if any) a node carries.
type Operand int

const (
	OperandNone Operand = iota
	OperandInt
	OperandFloat
	OperandString
	OperandOperator // an operator code (unary/binary/mutation op), stored in Int
)

// Node is one Module IR node: a kind, zero or more children, a source
// range, and an optional operand payload. Nodes are reference-counted hard
// objects per spec §3.5 ("Nodes are reference-counted hard objects; the
// final module holds the root") — Node embeds a refs.Hard-compatible count
// via basketless self-management, since Module IR itself is never basket-GC'd
// (only runtime object graphs are); the hard count here exists so multiple
// parents (e.g. a shared literal) can be safely aliased without deep-copying.
type Node struct {
	Kind     Kind
	Range    Range
	Children []*Node
	Operand  Operand

	IntOperand    int64
	FloatOperand  float64
	StringOperand string

	// Type is the deduced/declared type, filled in by the compiler's
	// builder as it emits each node (spec §3.5, §4.6 "the builder that also
	// deduces types").
	Type *types.Type

	// Name carries identifier text for nodes where Kind alone doesn't
	// capture it (e.g. ExprVariableGet's variable name, StmtCatch's bound
	// name, ExprPropertyGet's static property name when known).
	Name string

	// Manifests carries the type a ExprTypeManifestation node reifies. Type
	// holds the manifestation's own static type (always TypeKind, spec
	// §4.6.4 "Manifestation"), so this is a second slot rather than a
	// repurposing of Type: the runtime needs to know WHICH type the
	// manifestation names (to resolve `int.max`-style static members),
	// while the compiler's assignability checks must keep seeing TypeKind.
	Manifests *types.Type

	refCount int32
}

// NewNode constructs a node of the given kind with the given children,
// propagating rng verbatim (spec §3.5: "each node carries a source range").
func NewNode(kind Kind, rng Range, children ...*Node) *Node {
	return &Node{Kind: kind, Range: rng, Children: children, refCount: 1}
}

// Acquire/Release implement the hard reference-count contract nodes carry
// (spec §3.5). The Module IR itself does not route through a Basket (no
// cycles are possible in a tree); this only guards against premature reuse
// when a node is shared by multiple parents (e.g. hoisted for-loop init).
func (n *Node) Acquire() *Node {
	n.refCount++
	return n
}

func (n *Node) Release() int32 {
	n.refCount--
	return n.refCount
}
