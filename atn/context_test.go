package atn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Shorthand stack builders matching the diagrams in the test names: each
// letter is a singleton whose return state is fixed (a=1, b=2, c=3, d=4,
// u=6, v=7, w=8, x=9, y=10) over an empty root, "*" for partial context and
// "$" for full.

func root(full bool) *PredictionContext {
	if full {
		return EmptyFull
	}
	return EmptyLocal
}

func ctxA(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 1) }
func ctxB(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 2) }
func ctxC(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 3) }
func ctxD(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 4) }
func ctxU(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 6) }
func ctxV(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 7) }
func ctxW(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 8) }
func ctxX(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 9) }
func ctxY(cc *ContextCache, full bool) *PredictionContext { return cc.GetChild(root(full), 10) }

func Test_ToDOT_JoinScenarios(t *testing.T) {
	testCases := []struct {
		name   string
		build  func(cc *ContextCache) *PredictionContext
		expect string
	}{
		{
			name: "root+root",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(EmptyLocal, EmptyLocal)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"*\"];\n" +
				"}\n",
		},
		{
			name: "root+root full context",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(EmptyFull, EmptyFull)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"$\"];\n" +
				"}\n",
		},
		{
			name: "x+root",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(ctxX(cc, false), EmptyLocal)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"*\"];\n" +
				"}\n",
		},
		{
			name: "x+root full context",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(ctxX(cc, true), EmptyFull)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s1[label=\"$\"];\n" +
				"  s0:p0->s1[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "root+x",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(EmptyLocal, ctxX(cc, false))
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"*\"];\n" +
				"}\n",
		},
		{
			name: "root+x full context",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(EmptyFull, ctxX(cc, true))
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s1[label=\"$\"];\n" +
				"  s0:p0->s1[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a+a",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(ctxA(cc, false), ctxA(cc, false))
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"}\n",
		},
		{
			name: "a(root)+a(x)",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := ctxA(cc, false)
				a2 := cc.GetChild(ctxX(cc, false), 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"}\n",
		},
		{
			name: "a(root)+a(x) full context",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := ctxA(cc, true)
				a2 := cc.GetChild(ctxX(cc, true), 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s2[label=\"$\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1:p0->s2[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(x)+a(root)",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := cc.GetChild(ctxX(cc, false), 1)
				a2 := ctxA(cc, false)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"}\n",
		},
		{
			name: "a(a(root)+root)+(a(root)+root) full context",
			build: func(cc *ContextCache) *PredictionContext {
				empty := EmptyFull
				child1 := cc.GetChild(empty, 8)
				right := cc.Join(empty, child1)
				left := cc.GetChild(right, 8)
				return cc.Join(left, right)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s2[label=\"$\"];\n" +
				"  s0:p0->s1[label=\"8\"];\n" +
				"  s1:p0->s2[label=\"8\"];\n" +
				"}\n",
		},
		{
			name: "a(x)+a(root) full context",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := cc.GetChild(ctxX(cc, true), 1)
				a2 := ctxA(cc, true)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>$\"];\n" +
				"  s2[label=\"$\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1:p0->s2[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a+b",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(ctxA(cc, false), ctxB(cc, false))
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"}\n",
		},
		{
			name: "a(x)+a(x) shared x",
			build: func(cc *ContextCache) *PredictionContext {
				x := ctxX(cc, false)
				a1 := cc.GetChild(x, 1)
				a2 := cc.GetChild(x, 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s2[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1->s2[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(b(x))+a(b(x))",
			build: func(cc *ContextCache) *PredictionContext {
				b1 := cc.GetChild(ctxX(cc, false), 2)
				b2 := cc.GetChild(ctxX(cc, false), 2)
				a1 := cc.GetChild(b1, 1)
				a2 := cc.GetChild(b2, 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1->s2[label=\"2\"];\n" +
				"  s2->s3[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(b(x))+a(c(x))",
			build: func(cc *ContextCache) *PredictionContext {
				b := cc.GetChild(ctxX(cc, false), 2)
				c := cc.GetChild(ctxX(cc, false), 3)
				a1 := cc.GetChild(b, 1)
				a2 := cc.GetChild(c, 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1:p0->s2[label=\"2\"];\n" +
				"  s1:p1->s2[label=\"3\"];\n" +
				"  s2->s3[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(x)+b(x) shared x",
			build: func(cc *ContextCache) *PredictionContext {
				x := ctxX(cc, false)
				a := cc.GetChild(x, 1)
				b := cc.GetChild(x, 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s2[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"  s1->s2[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(x)+b(y)",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxX(cc, false), 1)
				b := cc.GetChild(ctxY(cc, false), 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"*\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s2->s3[label=\"10\"];\n" +
				"  s1->s3[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(root)+b(x)",
			build: func(cc *ContextCache) *PredictionContext {
				a := ctxA(cc, false)
				b := cc.GetChild(ctxX(cc, false), 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s2->s1[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(root)+b(x) full context",
			build: func(cc *ContextCache) *PredictionContext {
				a := ctxA(cc, true)
				b := cc.GetChild(ctxX(cc, true), 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s1[label=\"$\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s2->s1[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "a(e(x))+b(f(x))",
			build: func(cc *ContextCache) *PredictionContext {
				e := cc.GetChild(ctxX(cc, false), 5)
				f := cc.GetChild(ctxX(cc, false), 6)
				a := cc.GetChild(e, 1)
				b := cc.GetChild(f, 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"3\"];\n" +
				"  s4[label=\"*\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s2->s3[label=\"6\"];\n" +
				"  s3->s4[label=\"9\"];\n" +
				"  s1->s3[label=\"5\"];\n" +
				"}\n",
		},
		{
			name: "[root]+[root] full context",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(EmptyFull, EmptyFull)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"$\"];\n" +
				"}\n",
		},
		{
			name: "[a,b]+[c]",
			build: func(cc *ContextCache) *PredictionContext {
				arr1 := cc.Join(ctxA(cc, false), ctxB(cc, false))
				arr2 := ctxC(cc, false)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"  s0:p2->s1[label=\"3\"];\n" +
				"}\n",
		},
		{
			name: "[a]+[a]",
			build: func(cc *ContextCache) *PredictionContext {
				return cc.Join(ctxA(cc, false), ctxA(cc, false))
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"}\n",
		},
		{
			name: "[a]+[b,c]",
			build: func(cc *ContextCache) *PredictionContext {
				arr1 := ctxA(cc, false)
				arr2 := cc.Join(ctxB(cc, false), ctxC(cc, false))
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"  s0:p2->s1[label=\"3\"];\n" +
				"}\n",
		},
		{
			name: "[a,c]+[b]",
			build: func(cc *ContextCache) *PredictionContext {
				arr1 := cc.Join(ctxA(cc, false), ctxC(cc, false))
				arr2 := ctxB(cc, false)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"  s0:p2->s1[label=\"3\"];\n" +
				"}\n",
		},
		{
			name: "[a,b]+[a]",
			build: func(cc *ContextCache) *PredictionContext {
				arr1 := cc.Join(ctxA(cc, false), ctxB(cc, false))
				arr2 := ctxA(cc, false)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"}\n",
		},
		{
			name: "[a,b]+[b]",
			build: func(cc *ContextCache) *PredictionContext {
				arr1 := cc.Join(ctxA(cc, false), ctxB(cc, false))
				arr2 := ctxB(cc, false)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s1[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"}\n",
		},
		{
			name: "[a(x)]+[b(y)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxX(cc, false), 1)
				b := cc.GetChild(ctxY(cc, false), 2)
				return cc.Join(a, b)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"*\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s2->s3[label=\"10\"];\n" +
				"  s1->s3[label=\"9\"];\n" +
				"}\n",
		},
		{
			name: "[a(x)]+[a(y)]",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := cc.GetChild(ctxX(cc, false), 1)
				a2 := cc.GetChild(ctxY(cc, false), 1)
				return cc.Join(a1, a2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[label=\"0\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s2[label=\"*\"];\n" +
				"  s0->s1[label=\"1\"];\n" +
				"  s1:p0->s2[label=\"9\"];\n" +
				"  s1:p1->s2[label=\"10\"];\n" +
				"}\n",
		},
		{
			name: "[a(x),c]+[a(y),d]",
			build: func(cc *ContextCache) *PredictionContext {
				a1 := cc.GetChild(ctxX(cc, false), 1)
				a2 := cc.GetChild(ctxY(cc, false), 1)
				arr1 := cc.Join(a1, ctxC(cc, false))
				arr2 := cc.Join(a2, ctxD(cc, false))
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s2[label=\"*\"];\n" +
				"  s1[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"3\"];\n" +
				"  s0:p2->s2[label=\"4\"];\n" +
				"  s1:p0->s2[label=\"9\"];\n" +
				"  s1:p1->s2[label=\"10\"];\n" +
				"}\n",
		},
		{
			name: "[a(u),b(v)]+[c(w),d(x)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxU(cc, false), 1)
				b := cc.GetChild(ctxV(cc, false), 2)
				c := cc.GetChild(ctxW(cc, false), 3)
				d := cc.GetChild(ctxX(cc, false), 4)
				arr1 := cc.Join(a, b)
				arr2 := cc.Join(c, d)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>|<p3>\"];\n" +
				"  s4[label=\"4\"];\n" +
				"  s5[label=\"*\"];\n" +
				"  s3[label=\"3\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s0:p2->s3[label=\"3\"];\n" +
				"  s0:p3->s4[label=\"4\"];\n" +
				"  s4->s5[label=\"9\"];\n" +
				"  s3->s5[label=\"8\"];\n" +
				"  s2->s5[label=\"7\"];\n" +
				"  s1->s5[label=\"6\"];\n" +
				"}\n",
		},
		{
			name: "[a(u),b(v)]+[b(v),d(x)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxU(cc, false), 1)
				b1 := cc.GetChild(ctxV(cc, false), 2)
				b2 := cc.GetChild(ctxV(cc, false), 2)
				d := cc.GetChild(ctxX(cc, false), 4)
				arr1 := cc.Join(a, b1)
				arr2 := cc.Join(b2, d)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s3[label=\"3\"];\n" +
				"  s4[label=\"*\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s0:p2->s3[label=\"4\"];\n" +
				"  s3->s4[label=\"9\"];\n" +
				"  s2->s4[label=\"7\"];\n" +
				"  s1->s4[label=\"6\"];\n" +
				"}\n",
		},
		{
			name: "[a(u),b(v)]+[b(w),d(x)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxU(cc, false), 1)
				b1 := cc.GetChild(ctxV(cc, false), 2)
				b2 := cc.GetChild(ctxW(cc, false), 2)
				d := cc.GetChild(ctxX(cc, false), 4)
				arr1 := cc.Join(a, b1)
				arr2 := cc.Join(b2, d)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s3[label=\"3\"];\n" +
				"  s4[label=\"*\"];\n" +
				"  s2[shape=record, label=\"<p0>|<p1>\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s0:p2->s3[label=\"4\"];\n" +
				"  s3->s4[label=\"9\"];\n" +
				"  s2:p0->s4[label=\"7\"];\n" +
				"  s2:p1->s4[label=\"8\"];\n" +
				"  s1->s4[label=\"6\"];\n" +
				"}\n",
		},
		{
			name: "[a(u),b(v)]+[b(v),d(u)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxU(cc, false), 1)
				b1 := cc.GetChild(ctxV(cc, false), 2)
				b2 := cc.GetChild(ctxV(cc, false), 2)
				d := cc.GetChild(ctxU(cc, false), 4)
				arr1 := cc.Join(a, b1)
				arr2 := cc.Join(b2, d)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>\"];\n" +
				"  s2[label=\"2\"];\n" +
				"  s3[label=\"*\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s2[label=\"2\"];\n" +
				"  s0:p2->s1[label=\"4\"];\n" +
				"  s2->s3[label=\"7\"];\n" +
				"  s1->s3[label=\"6\"];\n" +
				"}\n",
		},
		{
			name: "[a(u),b(u)]+[c(u),d(u)]",
			build: func(cc *ContextCache) *PredictionContext {
				a := cc.GetChild(ctxU(cc, false), 1)
				b := cc.GetChild(ctxU(cc, false), 2)
				c := cc.GetChild(ctxU(cc, false), 3)
				d := cc.GetChild(ctxU(cc, false), 4)
				arr1 := cc.Join(a, b)
				arr2 := cc.Join(c, d)
				return cc.Join(arr1, arr2)
			},
			expect: "digraph G {\n" +
				"rankdir=LR;\n" +
				"  s0[shape=record, label=\"<p0>|<p1>|<p2>|<p3>\"];\n" +
				"  s1[label=\"1\"];\n" +
				"  s2[label=\"*\"];\n" +
				"  s0:p0->s1[label=\"1\"];\n" +
				"  s0:p1->s1[label=\"2\"];\n" +
				"  s0:p2->s1[label=\"3\"];\n" +
				"  s0:p3->s1[label=\"4\"];\n" +
				"  s1->s2[label=\"6\"];\n" +
				"}\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			cc := NewContextCache()

			// execute
			r := tc.build(cc)
			actual := ToDOT(r)

			// assert
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Join_Identity(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	a := ctxA(cc, false)

	// assert
	assert.Same(a, cc.Join(a, a))
	assert.Same(EmptyLocal, cc.Join(a, EmptyLocal))
	assert.Same(EmptyLocal, cc.Join(EmptyLocal, a))
	assert.Same(EmptyLocal, cc.Join(EmptyLocal, EmptyLocal))
	assert.Same(EmptyFull, cc.Join(EmptyFull, EmptyFull))
}

func Test_Join_Commutative(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	left := cc.Join(cc.GetChild(ctxX(cc, false), 1), ctxB(cc, false))
	right := cc.Join(ctxB(cc, false), cc.GetChild(ctxX(cc, false), 1))

	// assert
	assert.True(left.Equals(right))
}

func Test_Join_AssociativeUpToCanonicalization(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	a := ctxA(cc, false)
	b := cc.GetChild(ctxX(cc, false), 2)
	c := ctxC(cc, false)

	// execute
	left := cc.Join(a, cc.Join(b, c))
	right := cc.Join(cc.Join(a, b), c)

	// assert
	assert.True(left.Equals(right))
}

func Test_Join_SingletonsWithSharedReturnStateStaySingleton(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	a1 := cc.GetChild(ctxX(cc, false), 1)
	a2 := cc.GetChild(ctxY(cc, false), 1)

	// execute
	r := cc.Join(a1, a2)

	// assert
	assert.Equal(1, r.Size(), "joining two singletons sharing a return state must yield a singleton")
	assert.Equal(1, r.ReturnState(0))
	assert.Equal(2, r.Parent(0).Size())
}

func Test_Join_ReturnStatesSortedAndUnique(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()

	// execute: join in scrambled order
	r := cc.Join(ctxC(cc, false), ctxA(cc, false))
	r = cc.Join(r, ctxD(cc, false))
	r = cc.Join(r, ctxA(cc, false))
	r = cc.Join(ctxB(cc, false), r)

	// assert
	assert.Equal(4, r.Size())
	for i := 0; i < r.Size()-1; i++ {
		assert.Less(r.ReturnState(i), r.ReturnState(i+1), "return states must be sorted ascending with no duplicates")
	}
}

func Test_HasEmpty(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	a := ctxA(cc, true)

	// execute
	withEmpty := cc.Join(a, EmptyFull)

	// assert
	assert.True(EmptyFull.HasEmpty())
	assert.True(EmptyLocal.HasEmpty())
	assert.False(a.HasEmpty())
	assert.True(withEmpty.HasEmpty())

	// and the marker sits at the end where it's O(1) to find
	assert.Equal(EmptyFullStateKey, withEmpty.ReturnState(withEmpty.Size()-1))

	// remove undoes add
	assert.True(RemoveEmptyContext(withEmpty).Equals(a))
	assert.Same(a, RemoveEmptyContext(a))
}

func Test_Equals_IsomorphicDAGsBuiltSeparately(t *testing.T) {
	// setup: build the same shape twice with no shared nodes at all
	assert := assert.New(t)

	build := func() *PredictionContext {
		x := GetChild(EmptyLocal, 9)
		a := GetChild(x, 1)
		b := GetChild(x, 2)
		return Join(a, b, nil)
	}

	left := build()
	right := build()

	// assert
	assert.NotSame(left, right)
	assert.True(left.Equals(right))
	assert.Equal(left.Hash(), right.Hash())
}

func Test_AppendContext(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()

	// appending to an empty context yields the suffix itself
	suffix := GetChild(EmptyFull, 42)
	assert.Same(suffix, AppendContext(EmptyFull, suffix, cc))

	// appending under a singleton grafts below it
	a := cc.GetChild(EmptyFull, 1)
	appended := AppendReturnContext(a, 42, cc)
	assert.Equal(1, appended.Size())
	assert.Equal(1, appended.ReturnState(0))
	assert.Equal(42, appended.Parent(0).ReturnState(0))

	// a tree suffix is not supported
	treeSuffix := cc.Join(cc.GetChild(EmptyFull, 5), cc.GetChild(EmptyFull, 6))
	assert.Panics(func() {
		AppendContext(a, treeSuffix, cc)
	})
}

func Test_AppendContext_ArrayWithEmptyTail(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()

	// [a, $] gets the suffix grafted under a and joined with the bare
	// suffix for the empty tail
	withEmpty := cc.Join(ctxA(cc, true), EmptyFull)

	// execute
	appended := AppendReturnContext(withEmpty, 42, cc)

	// assert: both a-over-42 and bare 42 stacks are represented
	assert.Equal(2, appended.Size())
	assert.Equal(1, appended.ReturnState(0))
	assert.Equal(42, appended.ReturnState(1))
}

func Test_ContextCache_Canonicalizes(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()

	// execute
	first := cc.GetChild(EmptyLocal, 7)
	second := cc.GetChild(EmptyLocal, 7)

	// assert
	assert.Same(first, second)

	// and the uncached mode builds fresh nodes every time
	un := Uncached()
	third := un.GetChild(EmptyLocal, 7)
	fourth := un.GetChild(EmptyLocal, 7)
	assert.NotSame(third, fourth)
	assert.True(third.Equals(fourth))
}

func Test_ContextCache_JoinKeyIsCommutative(t *testing.T) {
	// setup
	assert := assert.New(t)
	cc := NewContextCache()
	a := ctxA(cc, false)
	b := ctxB(cc, false)

	// execute
	ab := cc.Join(a, b)
	ba := cc.Join(b, a)

	// assert
	assert.Same(ab, ba)
}
