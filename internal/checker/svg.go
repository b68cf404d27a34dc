package checker

import (
	"fmt"
	"strings"
)

// AsSVG renders a discovered path (the initial state followed by the
// actions an explorer took to reach a counterexample) as a sequence
// diagram: one vertical lifeline per actor, one arrow per Deliver action,
// a dashed line per Drop action, and a circle per Timeout action. This is a supplemented
// feature ported from the original implementation's as_svg, useful for
// visually inspecting counterexamples; the core has no other rendering
// dependency.
func AsSVG[M comparable](actorCount int, path []SystemAction[M]) string {
	const laneWidth = 120
	const rowHeight = 36
	width := laneWidth * (actorCount + 1)
	height := rowHeight * (len(path) + 2)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, width, height)
	b.WriteString(`<defs><marker id="arrow" markerWidth="10" markerHeight="10" refX="10" refY="5" orient="auto"><path d="M0,0 L10,5 L0,10 z" fill="blue"/></marker></defs>`)
	for i := 0; i < actorCount; i++ {
		x := laneWidth * (i + 1)
		fmt.Fprintf(&b, `<line x1="%d" y1="0" x2="%d" y2="%d" stroke="black"/>`, x, x, height)
		fmt.Fprintf(&b, `<text x="%d" y="12">actor %d</text>`, x+4, i)
	}
	for row, action := range path {
		y := rowHeight * (row + 2)
		switch action.Kind {
		case ActionDeliver:
			x1 := laneWidth * (action.Src.Index() + 1)
			x2 := laneWidth * (action.Dst.Index() + 1)
			fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="blue" marker-end="url(#arrow)"/>`, x1, y, x2, y)
			fmt.Fprintf(&b, `<text x="%d" y="%d">%v</text>`, (x1+x2)/2, y-4, action.Msg)
		case ActionDrop:
			x1 := laneWidth * (action.Env.Src.Index() + 1)
			x2 := laneWidth * (action.Env.Dst.Index() + 1)
			fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="red" stroke-dasharray="4"/>`, x1, y, x2, y)
			fmt.Fprintf(&b, `<text x="%d" y="%d">dropped %v</text>`, (x1+x2)/2, y-4, action.Env.Msg)
		case ActionTimeout:
			x := laneWidth * (action.Timeout.Index() + 1)
			fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="4" fill="orange"/>`, x, y)
			fmt.Fprintf(&b, `<text x="%d" y="%d">timeout</text>`, x+6, y)
		}
	}
	b.WriteString(`</svg>`)
	return b.String()
}
