// Package audit runs consistency checks against the store: each check is a query whose
// value must satisfy a threshold, and a report is healthy only when every check passes.
package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/store"
)

// Check is a measurable invariant.
type Check struct {
	Name      string
	Query     func(context.Context) (float64, error)
	Threshold Threshold
}

type Threshold struct {
	Operator string // >, <, >=, <=, ==
	Value    float64
}

// CheckResult captures one check's outcome.
type CheckResult struct {
	Name     string  `json:"name"`
	Operator string  `json:"operator"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Passed   bool    `json:"passed"`
	Error    string  `json:"error,omitempty"`
}

// Report is the outcome of one audit run.
type Report struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Healthy   bool          `json:"healthy"`
	Checks    []CheckResult `json:"checks"`
}

// Auditor evaluates a fixed set of checks.
type Auditor struct {
	tracer trace.Tracer
	checks []Check
}

func NewAuditor(checks ...Check) *Auditor {
	return &Auditor{
		tracer: otel.Tracer("bookledger/audit"),
		checks: checks,
	}
}

// DefaultChecks are the ledger invariants: no book has negative stock and no sale row
// has a non-positive quantity or a negative amount.
func DefaultChecks(inspector store.Inspector) []Check {
	return []Check{
		{
			Name: "negative_stock_books",
			Query: func(ctx context.Context) (float64, error) {
				n, err := inspector.CountNegativeStock(ctx)
				return float64(n), err
			},
			Threshold: Threshold{Operator: "==", Value: 0},
		},
		{
			Name: "invalid_sales",
			Query: func(ctx context.Context) (float64, error) {
				n, err := inspector.CountInvalidSales(ctx)
				return float64(n), err
			},
			Threshold: Threshold{Operator: "==", Value: 0},
		},
	}
}

// Run evaluates every check. A check whose query fails counts as failed.
func (a *Auditor) Run(ctx context.Context) *Report {
	ctx, span := a.tracer.Start(ctx, "audit.run",
		trace.WithAttributes(attribute.Int("checks", len(a.checks))))
	defer span.End()

	report := &Report{
		StartTime: time.Now(),
		Healthy:   true,
		Checks:    make([]CheckResult, 0, len(a.checks)),
	}

	for _, check := range a.checks {
		result := CheckResult{
			Name:     check.Name,
			Operator: check.Threshold.Operator,
			Expected: check.Threshold.Value,
		}
		value, err := check.Query(ctx)
		if err != nil {
			result.Actual = -1
			result.Error = err.Error()
			span.RecordError(err)
		} else {
			result.Actual = value
			result.Passed = evaluateThreshold(value, check.Threshold)
		}
		if !result.Passed {
			report.Healthy = false
			span.AddEvent("check.failed", trace.WithAttributes(
				attribute.String("check.name", check.Name),
				attribute.Float64("check.actual", result.Actual),
			))
		}
		report.Checks = append(report.Checks, result)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	span.SetAttributes(attribute.Bool("healthy", report.Healthy))
	return report
}

func evaluateThreshold(value float64, threshold Threshold) bool {
	switch threshold.Operator {
	case ">":
		return value > threshold.Value
	case "<":
		return value < threshold.Value
	case ">=":
		return value >= threshold.Value
	case "<=":
		return value <= threshold.Value
	case "==":
		return value == threshold.Value
	default:
		return false
	}
}

// Print writes a human-readable summary of r.
func (r *Report) Print(w io.Writer) {
	if r.Healthy {
		fmt.Fprintf(w, "✅ Ledger consistent\n")
	} else {
		fmt.Fprintf(w, "❌ Ledger inconsistent\n")
	}
	for _, c := range r.Checks {
		mark := "✓"
		if !c.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "   %s %s: expected %s %.0f, got %.0f", mark, c.Name, c.Operator, c.Expected, c.Actual)
		if c.Error != "" {
			fmt.Fprintf(w, " (%s)", c.Error)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "📊 Duration: %s\n", r.Duration)
}
