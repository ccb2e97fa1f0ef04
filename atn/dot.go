package atn

import (
	"fmt"
	"strings"

	"github.com/dekarrin/thunnus/internal/util"
)

// ToDOT renders the prediction-context DAG rooted at context as a Graphviz
// digraph. Nodes are numbered in the order they are first discovered by a
// depth-first walk, with the root as s0. The empty sentinels render as "*"
// and "$"; multi-entry nodes render as record shapes with one slot per
// entry, and an entry whose return state is an empty marker shows the marker
// in its slot instead of producing an edge.
//
// The exact output text is stable and is part of the package's contract;
// tests compare against it verbatim.
func ToDOT(context *PredictionContext) string {
	var nodes strings.Builder
	var edges strings.Builder

	visited := util.NewKeySet[*PredictionContext]()
	ids := map[*PredictionContext]int{}

	workList := []*PredictionContext{context}
	visited.Add(context)
	ids[context] = 0

	for len(workList) > 0 {
		current := workList[len(workList)-1]
		workList = workList[:len(workList)-1]

		nodes.WriteString("  s")
		nodes.WriteString(fmt.Sprintf("%d", ids[current]))
		nodes.WriteRune('[')

		if current.Size() > 1 {
			nodes.WriteString("shape=record, ")
		}

		nodes.WriteString("label=\"")

		if current.IsEmpty() {
			if current.IsEmptyLocal() {
				nodes.WriteRune('*')
			} else {
				nodes.WriteRune('$')
			}
		} else if current.Size() > 1 {
			for i := 0; i < current.Size(); i++ {
				if i > 0 {
					nodes.WriteRune('|')
				}

				nodes.WriteString(fmt.Sprintf("<p%d>", i))
				if current.ReturnState(i) == EmptyFullStateKey {
					nodes.WriteRune('$')
				} else if current.ReturnState(i) == EmptyLocalStateKey {
					nodes.WriteRune('*')
				}
			}
		} else {
			nodes.WriteString(fmt.Sprintf("%d", ids[current]))
		}

		nodes.WriteString("\"];\n")

		for i := 0; i < current.Size(); i++ {
			if current.ReturnState(i) == EmptyFullStateKey || current.ReturnState(i) == EmptyLocalStateKey {
				continue
			}

			parent := current.Parent(i)
			if !visited.Has(parent) {
				visited.Add(parent)
				ids[parent] = len(ids)
				workList = append(workList, parent)
			}

			edges.WriteString(fmt.Sprintf("  s%d", ids[current]))
			if current.Size() > 1 {
				edges.WriteString(fmt.Sprintf(":p%d", i))
			}

			edges.WriteString("->")
			edges.WriteString(fmt.Sprintf("s%d", ids[parent]))
			edges.WriteString(fmt.Sprintf("[label=\"%d\"]", current.ReturnState(i)))
			edges.WriteString(";\n")
		}
	}

	var result strings.Builder
	result.WriteString("digraph G {\n")
	result.WriteString("rankdir=LR;\n")
	result.WriteString(nodes.String())
	result.WriteString(edges.String())
	result.WriteString("}\n")
	return result.String()
}
