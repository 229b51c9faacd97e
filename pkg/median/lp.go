package median

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
)

// lpTermsPerLine keeps LP rows well below the 510 character limit of
// common readers.
const lpTermsPerLine = 8

// zVar is the continuous radius variable of the p-center model.
const zVar = "z"

// WriteLP writes the formulation in CPLEX LP format so it can be handed to
// an external MILP solver (CBC, GLPK, HiGHS). Assignments with +Inf cost are
// omitted, which forbids them. A Minimax formulation minimizes z with one
// radius row per demand point; z is non-negative by the LP default bounds.
func (f *Formulation) WriteLP(w io.Writer) error {
	if err := f.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	lw := &lpWriter{w: bw}

	fmt.Fprintf(bw, "\\ %s: %d demand points, %d sites, p=%d\n", f.Problem, f.N, f.M, f.P)
	fmt.Fprintln(bw, "Minimize")
	if f.Minimax() {
		fmt.Fprintf(bw, " obj: %s\n", zVar)
	} else {
		lw.begin(" obj:")
		for i, row := range f.Cost {
			for j, c := range row {
				if !math.IsInf(c, 1) {
					lw.term(c, xVar(i, j))
				}
			}
		}
		lw.end("")
	}

	fmt.Fprintln(bw, "Subject To")
	for i, row := range f.Cost {
		lw.begin(fmt.Sprintf(" assign_%d:", i))
		for j, c := range row {
			if !math.IsInf(c, 1) {
				lw.term(1, xVar(i, j))
			}
		}
		lw.end(" = 1")
	}
	for i, row := range f.Cost {
		for j, c := range row {
			if !math.IsInf(c, 1) {
				fmt.Fprintf(bw, " link_%d_%d: %s - %s <= 0\n", i, j, xVar(i, j), yVar(j))
			}
		}
	}
	lw.begin(" count:")
	for j := 0; j < f.M; j++ {
		lw.term(1, yVar(j))
	}
	lw.end(" = " + strconv.Itoa(f.P))
	if f.Minimax() {
		for i, row := range f.Cost {
			// Rows without a positive finite cost never bind z.
			if !slices.ContainsFunc(row, radiusTerm) {
				continue
			}
			lw.begin(fmt.Sprintf(" radius_%d:", i))
			for j, c := range row {
				if radiusTerm(c) {
					lw.term(c, xVar(i, j))
				}
			}
			lw.end(" - " + zVar + " <= 0")
		}
	}

	fmt.Fprintln(bw, "Binary")
	for i, row := range f.Cost {
		for j, c := range row {
			if !math.IsInf(c, 1) {
				fmt.Fprintf(bw, " %s\n", xVar(i, j))
			}
		}
	}
	for j := 0; j < f.M; j++ {
		fmt.Fprintf(bw, " %s\n", yVar(j))
	}
	fmt.Fprintln(bw, "End")

	return bw.Flush()
}

func radiusTerm(c float64) bool { return c > 0 && !math.IsInf(c, 1) }

func xVar(i, j int) string { return "x_" + strconv.Itoa(i) + "_" + strconv.Itoa(j) }
func yVar(j int) string    { return "y_" + strconv.Itoa(j) }

// lpWriter emits a linear expression, wrapping long rows.
type lpWriter struct {
	w     *bufio.Writer
	terms int
}

func (l *lpWriter) begin(label string) {
	l.w.WriteString(label)
	l.terms = 0
}

func (l *lpWriter) term(coef float64, name string) {
	if l.terms > 0 && l.terms%lpTermsPerLine == 0 {
		l.w.WriteString("\n  ")
	}
	sign := " +"
	if l.terms == 0 {
		sign = ""
	}
	if coef == 1 {
		fmt.Fprintf(l.w, "%s %s", sign, name)
	} else {
		fmt.Fprintf(l.w, "%s %s %s", sign, strconv.FormatFloat(coef, 'g', -1, 64), name)
	}
	l.terms++
}

func (l *lpWriter) end(rhs string) {
	if l.terms == 0 {
		// LP readers reject empty expressions.
		l.w.WriteString(" 0 " + yVar(0))
	}
	l.w.WriteString(rhs + "\n")
}
