//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Package network implements the technology-independent source
// network: a combinational DAG of k-input Boolean nodes with
// complemented edges, primary inputs and outputs, and per-node
// functions used for cut-function composition.
package network

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/okarvonen/techmap/tt"
)

// Signal references a node output with an optional complement:
// node index << 1 | complement bit.
type Signal uint32

// MakeSignal creates a signal for node with the given complement.
func MakeSignal(node int, compl bool) Signal {
	s := Signal(node) << 1
	if compl {
		s |= 1
	}
	return s
}

// Node returns the node index the signal refers to.
func (s Signal) Node() int {
	return int(s >> 1)
}

// Compl reports whether the signal is complemented.
func (s Signal) Compl() bool {
	return s&1 == 1
}

// Not returns the complemented signal.
func (s Signal) Not() Signal {
	return s ^ 1
}

func (s Signal) String() string {
	if s.Compl() {
		return fmt.Sprintf("!n%d", s.Node())
	}
	return fmt.Sprintf("n%d", s.Node())
}

type kind uint8

const (
	kindConst kind = iota
	kindInput
	kindGate
)

type node struct {
	kind   kind
	fanins []Signal
	fn     tt.TT
	fanout int
	name   string
}

// Network is a combinational logic network. Node 0 is the constant-0
// node; primary inputs and internal nodes follow in insertion order.
// Insertion order is a valid topological order: a node's fanins are
// always created before the node itself.
type Network struct {
	nodes   []node
	numPIs  int
	pos     []Signal
	poNames []string
}

// New creates an empty network holding only the constant-0 node.
func New() *Network {
	return &Network{
		nodes: []node{{kind: kindConst, fn: tt.Const0(0)}},
	}
}

// Const0 returns the constant-0 signal.
func (n *Network) Const0() Signal {
	return MakeSignal(0, false)
}

// Const1 returns the constant-1 signal.
func (n *Network) Const1() Signal {
	return MakeSignal(0, true)
}

// AddInput creates a new primary input.
func (n *Network) AddInput(name string) Signal {
	idx := len(n.nodes)
	n.nodes = append(n.nodes, node{
		kind: kindInput,
		name: name,
	})
	n.numPIs++
	return MakeSignal(idx, false)
}

// AddNode creates an internal node with the given fanins and local
// function. The function arity must match the fanin count and all
// fanins must already exist.
func (n *Network) AddNode(fanins []Signal, fn tt.TT) Signal {
	if fn.Vars != len(fanins) {
		panic(fmt.Sprintf("network: function arity %d for %d fanins",
			fn.Vars, len(fanins)))
	}
	idx := len(n.nodes)
	for _, f := range fanins {
		if f.Node() >= idx {
			panic(fmt.Sprintf("network: fanin %s of node %d not yet created",
				f, idx))
		}
		n.nodes[f.Node()].fanout++
	}
	fi := make([]Signal, len(fanins))
	copy(fi, fanins)
	n.nodes = append(n.nodes, node{
		kind:   kindGate,
		fanins: fi,
		fn:     fn,
	})
	return MakeSignal(idx, false)
}

// AddAnd creates a 2-input AND node.
func (n *Network) AddAnd(a, b Signal) Signal {
	return n.AddNode([]Signal{a, b}, and2())
}

// AddOr creates an OR of two signals using an AND node with
// complemented edges.
func (n *Network) AddOr(a, b Signal) Signal {
	return n.AddAnd(a.Not(), b.Not()).Not()
}

// AddXor creates a 2-input XOR node.
func (n *Network) AddXor(a, b Signal) Signal {
	return n.AddNode([]Signal{a, b}, xor2())
}

// AddMaj creates a 3-input majority node.
func (n *Network) AddMaj(a, b, c Signal) Signal {
	return n.AddNode([]Signal{a, b, c}, maj3())
}

// AddOutput registers a primary output.
func (n *Network) AddOutput(s Signal, name string) {
	if s.Node() >= len(n.nodes) {
		panic(fmt.Sprintf("network: output %s refers to unknown node", s))
	}
	n.nodes[s.Node()].fanout++
	n.pos = append(n.pos, s)
	n.poNames = append(n.poNames, name)
}

// Size returns the number of nodes, including the constant and the
// primary inputs.
func (n *Network) Size() int {
	return len(n.nodes)
}

// NumPIs returns the number of primary inputs.
func (n *Network) NumPIs() int {
	return n.numPIs
}

// NumPOs returns the number of primary outputs.
func (n *Network) NumPOs() int {
	return len(n.pos)
}

// PO returns the i'th primary output signal and name.
func (n *Network) PO(i int) (Signal, string) {
	return n.pos[i], n.poNames[i]
}

// IsConstant reports whether the node is the constant node.
func (n *Network) IsConstant(node int) bool {
	return n.nodes[node].kind == kindConst
}

// IsPI reports whether the node is a primary input.
func (n *Network) IsPI(node int) bool {
	return n.nodes[node].kind == kindInput
}

// Name returns the name of a primary input node.
func (n *Network) Name(node int) string {
	return n.nodes[node].name
}

// FaninCount returns the number of fanins of the node.
func (n *Network) FaninCount(node int) int {
	return len(n.nodes[node].fanins)
}

// Fanin returns the i'th fanin signal of the node.
func (n *Network) Fanin(node, i int) Signal {
	return n.nodes[node].fanins[i]
}

// FanoutSize returns the number of users of the node, primary outputs
// included.
func (n *Network) FanoutSize(node int) int {
	return n.nodes[node].fanout
}

// Function returns the local function of an internal node.
func (n *Network) Function(node int) tt.TT {
	return n.nodes[node].fn
}

// Compute evaluates the node's local function over the fanin truth
// tables. The argument tables are given in fanin order and in the
// non-complemented polarity of the fanin node; edge complements are
// applied here.
func (n *Network) Compute(node int, fanins []tt.TT) tt.TT {
	nd := &n.nodes[node]
	if len(fanins) != len(nd.fanins) {
		panic("network: Compute fanin count mismatch")
	}
	args := make([]tt.TT, len(fanins))
	for i, f := range nd.fanins {
		if f.Compl() {
			args[i] = fanins[i].Not()
		} else {
			args[i] = fanins[i]
		}
	}
	return tt.Compose(nd.fn, args)
}

// Validate checks the structural invariants of the network: fanins
// precede their users and output signals refer to existing nodes.
func (n *Network) Validate() error {
	for i := range n.nodes {
		for _, f := range n.nodes[i].fanins {
			if f.Node() >= i {
				return errors.Errorf(
					"node %d: fanin %s does not precede its user", i, f)
			}
		}
		if n.nodes[i].kind == kindGate && len(n.nodes[i].fanins) == 0 {
			return errors.Errorf("node %d: internal node without fanins", i)
		}
	}
	if len(n.pos) == 0 {
		return errors.New("network has no outputs")
	}
	return nil
}

// Simulate evaluates the network for the given primary input values
// and returns the primary output values.
func (n *Network) Simulate(inputs []bool) []bool {
	if len(inputs) != n.numPIs {
		panic("network: Simulate input count mismatch")
	}
	values := make([]bool, len(n.nodes))
	var pi int
	for i := range n.nodes {
		switch n.nodes[i].kind {
		case kindConst:
			values[i] = false
		case kindInput:
			values[i] = inputs[pi]
			pi++
		case kindGate:
			var m int
			for j, f := range n.nodes[i].fanins {
				v := values[f.Node()]
				if f.Compl() {
					v = !v
				}
				if v {
					m |= 1 << j
				}
			}
			values[i] = n.nodes[i].fn.Bit(m)
		}
	}
	outs := make([]bool, len(n.pos))
	for i, po := range n.pos {
		v := values[po.Node()]
		if po.Compl() {
			v = !v
		}
		outs[i] = v
	}
	return outs
}

func and2() tt.TT {
	return tt.NthVar(2, 0).And(tt.NthVar(2, 1))
}

func xor2() tt.TT {
	return tt.NthVar(2, 0).Xor(tt.NthVar(2, 1))
}

func maj3() tt.TT {
	a, b, c := tt.NthVar(3, 0), tt.NthVar(3, 1), tt.NthVar(3, 2)
	return a.And(b).Or(a.And(c)).Or(b.And(c))
}
