package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type SeriesSummary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Last   float64
}

func (s SeriesSummary) String() string {
	return fmt.Sprintf("%s: mean %.4f std %.4f min %.4f max %.4f last %.4f",
		s.Name, s.Mean, s.StdDev, s.Min, s.Max, s.Last)
}

func summarize(name string, values []float64) SeriesSummary {
	var result = SeriesSummary{Name: name}
	if len(values) == 0 {
		return result
	}
	result.Mean, result.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		result.StdDev = 0
	}
	result.Min = floats.Min(values)
	result.Max = floats.Max(values)
	result.Last = values[len(values)-1]
	return result
}

// Summary describes every loss series of the run.
func (m *TrainingMetrics) Summary() []SeriesSummary {
	return []SeriesSummary{
		summarize(labelDiscriminatorReal, m.dReal),
		summarize(labelDiscriminatorFake, m.dFake),
		summarize(labelGenerator, m.g),
		summarize("G Loss adversarial", m.gAdv),
		summarize("G Loss L2", m.gL2),
	}
}

// FormatSeries renders a loss series as a single line, as the run log prints
// them at the end of training.
func FormatSeries(values []float64) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%.6g", v)
	}
	sb.WriteString("]")
	return sb.String()
}
